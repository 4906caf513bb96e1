package service

import (
	"context"

	"github.com/dossierr/case-assistant/internal/model"
)

// Generator produces a completion for an assembled prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the persistent per-case nearest-neighbour index.
type VectorIndex interface {
	Stat(ctx context.Context, caseID string) (model.IndexHandle, bool, error)
	Rebuild(ctx context.Context, caseID string, entries []model.IndexEntry) (model.IndexHandle, error)
	Search(ctx context.Context, caseID string, vector []float32, k int) ([]model.Passage, error)
}

// DocumentStore lists and fetches a case's raw documents.
type DocumentStore interface {
	List(ctx context.Context, caseID string) ([]model.Document, error)
}

// HistoryStore is the append-only per-case conversation log.
type HistoryStore interface {
	Recent(ctx context.Context, caseID string, n int) ([]model.ConversationTurn, error)
	AppendExchange(ctx context.Context, caseID, userText, assistantText string) error
}

// AnswerCache holds generated answers keyed by prompt hash.
type AnswerCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, answer string) error
}
