package service

import (
	"strings"

	"github.com/dossierr/case-assistant/internal/model"
)

// Prompt labels for the two speakers.
const (
	userLabel      = "User"
	assistantLabel = "Bot"
)

// renderHistory formats the trailing window of a conversation for the
// prompt: the last n turns, oldest first, one "<Label>: <content>" line per
// turn. Order and duplicates are preserved exactly as stored.
func renderHistory(turns []model.ConversationTurn, n int) string {
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	var sb strings.Builder
	for _, t := range turns {
		label := assistantLabel
		if t.Role == model.RoleUser {
			label = userLabel
		}
		sb.WriteString(label)
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	return sb.String()
}
