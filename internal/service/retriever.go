package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dossierr/case-assistant/internal/model"
)

// Retriever runs a similarity search against a case's index. Scores follow
// the index engine's convention: L2 distance, lower is better, best first.
type Retriever struct {
	embedder Embedder
	index    VectorIndex
	topK     int
}

func NewRetriever(embedder Embedder, index VectorIndex, topK int) *Retriever {
	return &Retriever{embedder: embedder, index: index, topK: topK}
}

// Search embeds the query and returns up to topK passages. An empty index
// yields an empty slice, which is a valid result, not a failure.
func (r *Retriever) Search(ctx context.Context, caseID, query string) ([]model.Passage, error) {
	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return nil, fmt.Errorf("retrieve case %s: %w", caseID, err)
		}
		return nil, fmt.Errorf("%w: case %s: embed query: %v", ErrRetrievalUnavailable, caseID, err)
	}
	passages, err := r.index.Search(ctx, caseID, vec, r.topK)
	if err != nil {
		return nil, fmt.Errorf("%w: case %s: %v", ErrRetrievalUnavailable, caseID, err)
	}
	return passages, nil
}
