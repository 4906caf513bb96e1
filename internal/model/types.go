package model

import "time"

// Document is one raw file pulled from a case's folder in the document store.
type Document struct {
	Source  string `json:"source"`
	Content string `json:"content"`
}

// Chunk is a bounded slice of a document's text, the unit that gets embedded.
type Chunk struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// IndexEntry is a chunk together with its embedding, ready to be persisted.
type IndexEntry struct {
	Chunk     Chunk
	Embedding []float32
}

// IndexHandle describes a case's active vector index.
type IndexHandle struct {
	CaseID  string    `json:"case_id"`
	Entries int       `json:"entries"`
	BuiltAt time.Time `json:"built_at"`
}

// Passage is one retrieval hit. Score is the index engine's distance,
// lower is better.
type Passage struct {
	Text   string  `json:"text"`
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Roles for conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ConversationTurn is one half of an exchange in a case's chat history.
type ConversationTurn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// QueryResult is the orchestrator's answer with token accounting.
// TotalTokens is always the sum of the five component counts.
type QueryResult struct {
	Answer                  string   `json:"answer"`
	TotalTokens             int      `json:"total_tokens"`
	PromptTokens            int      `json:"prompt_tokens"`
	QueryTokens             int      `json:"query_tokens"`
	ResultTokens            int      `json:"result_tokens"`
	ChatHistoryTokens       int      `json:"chat_history_tokens"`
	DocumentsRetrieved      []string `json:"documents_retrieved"`
	DocumentRetrievedTokens int      `json:"document_retrieved_tokens"`
}

// AskRequest is the JSON body of the query endpoint.
type AskRequest struct {
	Query string `json:"query"`
}
