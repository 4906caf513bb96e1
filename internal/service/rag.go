// Package service is the retrieval-augmented query pipeline: index
// resolution, similarity retrieval, history windowing, prompt assembly and
// cached generation with token accounting.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"

	"github.com/dossierr/case-assistant/internal/model"
	"github.com/dossierr/case-assistant/internal/token"
	"github.com/dossierr/case-assistant/internal/util"
)

// Options tunes the orchestrator's behaviour.
type Options struct {
	// HistoryWindow is how many trailing turns go into the prompt.
	HistoryWindow int
	// RetrievalEnabled switches the pipeline between retrieval-augmented
	// and plain conversational mode. Both return the same result shape.
	RetrievalEnabled bool
	// DegradeOnRetrievalError lets a query fall back to plain mode when
	// retrieval is unavailable instead of failing closed.
	DegradeOnRetrievalError bool
}

// RAGService is the externally invoked query orchestrator.
type RAGService struct {
	resolver  *Resolver
	retriever *Retriever
	generator Generator
	history   HistoryStore
	cache     AnswerCache
	counter   token.Counter
	opts      Options
}

func NewRAGService(resolver *Resolver, retriever *Retriever, generator Generator,
	history HistoryStore, cache AnswerCache, counter token.Counter, opts Options) *RAGService {
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = 5
	}
	return &RAGService{
		resolver:  resolver,
		retriever: retriever,
		generator: generator,
		history:   history,
		cache:     cache,
		counter:   counter,
		opts:      opts,
	}
}

// Query answers one user message for a case: resolve the index, retrieve
// passages, window the history, assemble the prompt, generate (through the
// answer cache), persist the exchange and account tokens.
func (s *RAGService) Query(ctx context.Context, caseID, query string) (*model.QueryResult, error) {
	passages, err := s.retrieve(ctx, caseID, query)
	if err != nil {
		return nil, err
	}

	turns, err := s.history.Recent(ctx, caseID, s.opts.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("query case %s: load history: %w", caseID, err)
	}
	historyText := renderHistory(turns, s.opts.HistoryWindow)

	prompt := assemblePrompt(historyText, passages, query)

	answer, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("query case %s: %w", caseID, err)
	}

	// Persisted only after generation succeeded, user turn first, both in
	// one write, so the log never carries an unanswered user turn.
	if err := s.history.AppendExchange(ctx, caseID, query, answer); err != nil {
		return nil, fmt.Errorf("query case %s: %w", caseID, err)
	}

	sources := make([]string, 0, len(passages))
	docTokens := 0
	for _, p := range passages {
		sources = append(sources, p.Source)
		docTokens += s.counter.Count(p.Text)
	}

	res := &model.QueryResult{
		Answer:                  answer,
		PromptTokens:            s.counter.Count(prompt),
		QueryTokens:             s.counter.Count(query),
		ResultTokens:            s.counter.Count(answer),
		ChatHistoryTokens:       s.counter.Count(historyText),
		DocumentsRetrieved:      sources,
		DocumentRetrievedTokens: docTokens,
	}
	res.TotalTokens = res.PromptTokens + res.QueryTokens + res.ResultTokens +
		res.ChatHistoryTokens + res.DocumentRetrievedTokens
	return res, nil
}

// IndexFiles is the explicit index entry point: reuse the persisted index,
// or rebuild when forced or absent.
func (s *RAGService) IndexFiles(ctx context.Context, caseID string, force bool) (model.IndexHandle, error) {
	if force {
		return s.resolver.ForceBuild(ctx, caseID)
	}
	return s.resolver.Resolve(ctx, caseID)
}

func (s *RAGService) retrieve(ctx context.Context, caseID, query string) ([]model.Passage, error) {
	if !s.opts.RetrievalEnabled {
		return nil, nil
	}
	if _, err := s.resolver.Resolve(ctx, caseID); err != nil {
		if s.opts.DegradeOnRetrievalError && errors.Is(err, ErrRetrievalUnavailable) {
			log.Printf("case %s: retrieval degraded: %v", caseID, err)
			return nil, nil
		}
		return nil, err
	}
	passages, err := s.retriever.Search(ctx, caseID, query)
	if err != nil {
		if s.opts.DegradeOnRetrievalError && errors.Is(err, ErrRetrievalUnavailable) {
			log.Printf("case %s: retrieval degraded: %v", caseID, err)
			return nil, nil
		}
		return nil, err
	}
	return passages, nil
}

// generate runs the prompt through the completion backend, reading the
// answer cache first and writing it after. Cache trouble is logged and
// treated as a miss; correctness never depends on the cache.
func (s *RAGService) generate(ctx context.Context, prompt string) (string, error) {
	key := cacheKey(prompt)
	if answer, ok, err := s.cache.Get(ctx, key); err != nil {
		log.Printf("answer cache read failed: %v", err)
	} else if ok {
		log.Printf("answer cache hit for prompt %q...", util.TruncateRunes(prompt, 40))
		return answer, nil
	}

	answer, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := s.cache.Put(ctx, key, answer); err != nil {
		log.Printf("answer cache write failed: %v", err)
	}
	return answer, nil
}

func cacheKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}
