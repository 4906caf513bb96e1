package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dossierr/case-assistant/internal/model"
)

// Indexer builds a case's vector index from its raw documents: list, split,
// embed, then persist in one atomic rebuild.
type Indexer struct {
	docs         DocumentStore
	embedder     Embedder
	index        VectorIndex
	chunkSize    int
	chunkOverlap int
}

func NewIndexer(docs DocumentStore, embedder Embedder, index VectorIndex, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		docs:         docs,
		embedder:     embedder,
		index:        index,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Build replaces the case's index. A case without documents gets a valid
// empty index. All embeddings are computed before anything is persisted, so
// an embedding failure leaves the previous index untouched.
func (ix *Indexer) Build(ctx context.Context, caseID string) (model.IndexHandle, error) {
	docs, err := ix.docs.List(ctx, caseID)
	if err != nil {
		return model.IndexHandle{}, fmt.Errorf("%w: case %s: %v", ErrRetrievalUnavailable, caseID, err)
	}

	var entries []model.IndexEntry
	for _, doc := range docs {
		for i, part := range splitText(doc.Content, ix.chunkSize, ix.chunkOverlap) {
			chunk := model.Chunk{
				ID:     fmt.Sprintf("%s_chunk_%d", doc.Source, i),
				Source: doc.Source,
				Text:   part,
			}
			vec, err := ix.embedder.Embed(ctx, part)
			if err != nil {
				if errors.Is(err, ErrAccessDenied) {
					return model.IndexHandle{}, fmt.Errorf("index case %s: %w", caseID, err)
				}
				return model.IndexHandle{}, fmt.Errorf("%w: case %s: embed %s: %v", ErrRetrievalUnavailable, caseID, chunk.ID, err)
			}
			entries = append(entries, model.IndexEntry{Chunk: chunk, Embedding: vec})
		}
	}

	handle, err := ix.index.Rebuild(ctx, caseID, entries)
	if err != nil {
		return model.IndexHandle{}, fmt.Errorf("%w: case %s: %v", ErrRetrievalUnavailable, caseID, err)
	}
	log.Printf("indexed case %s: %d documents, %d chunks", caseID, len(docs), len(entries))
	return handle, nil
}
