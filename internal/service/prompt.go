package service

import (
	"fmt"
	"strings"

	"github.com/dossierr/case-assistant/internal/model"
)

const systemPreamble = "System: The following is a friendly conversation between a knowledgeable helpful assistant and a customer. " +
	"Only answer as the bot, never as the customer. The assistant is talkative and provides lots of specific details from its context. " +
	"When case documents are provided below, base the answer on them."

// assemblePrompt does a deterministic template fill: preamble, retrieved
// context (kept apart from the conversation so the model cannot mistake it
// for something the user said), the history window, the query, and the
// trailing cue for the model to continue as the assistant.
func assemblePrompt(historyText string, passages []model.Passage, query string) string {
	var sb strings.Builder
	sb.WriteString(systemPreamble)
	sb.WriteString("\n\n")
	if len(passages) > 0 {
		sb.WriteString("Case documents:\n")
		for _, p := range passages {
			sb.WriteString(fmt.Sprintf("[%s]\n%s\n\n", p.Source, p.Text))
		}
	}
	sb.WriteString("Current conversation:\n")
	sb.WriteString(historyText)
	sb.WriteString(userLabel + ": ")
	sb.WriteString(query)
	sb.WriteString("\n" + assistantLabel + ":")
	return sb.String()
}
