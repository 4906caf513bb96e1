package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dossierr/case-assistant/internal/model"
)

// Test fakes for the pipeline's collaborators. Every fake has overridable
// Fn fields and a reasonable in-memory default.

type fakeEmbedder struct {
	EmbedFn func(ctx context.Context, text string) ([]float32, error)
	calls   int
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.EmbedFn != nil {
		return f.EmbedFn(ctx, text)
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

type fakeIndex struct {
	mu       sync.Mutex
	cases    map[string][]model.IndexEntry
	rebuilds int

	StatFn    func(ctx context.Context, caseID string) (model.IndexHandle, bool, error)
	RebuildFn func(ctx context.Context, caseID string, entries []model.IndexEntry) (model.IndexHandle, error)
	SearchFn  func(ctx context.Context, caseID string, vector []float32, k int) ([]model.Passage, error)
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{cases: make(map[string][]model.IndexEntry)}
}

func (f *fakeIndex) Stat(ctx context.Context, caseID string) (model.IndexHandle, bool, error) {
	if f.StatFn != nil {
		return f.StatFn(ctx, caseID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, ok := f.cases[caseID]
	return model.IndexHandle{CaseID: caseID, Entries: len(entries)}, ok, nil
}

func (f *fakeIndex) Rebuild(ctx context.Context, caseID string, entries []model.IndexEntry) (model.IndexHandle, error) {
	if f.RebuildFn != nil {
		return f.RebuildFn(ctx, caseID, entries)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rebuilds++
	f.cases[caseID] = entries
	return model.IndexHandle{CaseID: caseID, Entries: len(entries)}, nil
}

func (f *fakeIndex) Search(ctx context.Context, caseID string, vector []float32, k int) ([]model.Passage, error) {
	if f.SearchFn != nil {
		return f.SearchFn(ctx, caseID, vector, k)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Passage
	for i, e := range f.cases[caseID] {
		if len(out) >= k {
			break
		}
		out = append(out, model.Passage{Text: e.Chunk.Text, Source: e.Chunk.Source, Score: float64(i)})
	}
	return out, nil
}

type fakeDocs struct {
	docs   map[string][]model.Document
	ListFn func(ctx context.Context, caseID string) ([]model.Document, error)
}

func (f *fakeDocs) List(ctx context.Context, caseID string) ([]model.Document, error) {
	if f.ListFn != nil {
		return f.ListFn(ctx, caseID)
	}
	return f.docs[caseID], nil
}

type fakeHistory struct {
	mu       sync.Mutex
	turns    map[string][]model.ConversationTurn
	RecentFn func(ctx context.Context, caseID string, n int) ([]model.ConversationTurn, error)
	AppendFn func(ctx context.Context, caseID, userText, assistantText string) error
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{turns: make(map[string][]model.ConversationTurn)}
}

func (f *fakeHistory) Recent(ctx context.Context, caseID string, n int) ([]model.ConversationTurn, error) {
	if f.RecentFn != nil {
		return f.RecentFn(ctx, caseID, n)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	turns := f.turns[caseID]
	if len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	return turns, nil
}

func (f *fakeHistory) AppendExchange(ctx context.Context, caseID, userText, assistantText string) error {
	if f.AppendFn != nil {
		return f.AppendFn(ctx, caseID, userText, assistantText)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turns[caseID] = append(f.turns[caseID],
		model.ConversationTurn{Role: model.RoleUser, Content: userText},
		model.ConversationTurn{Role: model.RoleAssistant, Content: assistantText},
	)
	return nil
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	hits    int
	GetFn   func(ctx context.Context, key string) (string, bool, error)
	PutFn   func(ctx context.Context, key, answer string) error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, key)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	answer, ok := f.entries[key]
	if ok {
		f.hits++
	}
	return answer, ok, nil
}

func (f *fakeCache) Put(ctx context.Context, key, answer string) error {
	if f.PutFn != nil {
		return f.PutFn(ctx, key, answer)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = answer
	return nil
}

type fakeGenerator struct {
	GenerateFn func(ctx context.Context, prompt string) (string, error)
	calls      int
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.GenerateFn != nil {
		return f.GenerateFn(ctx, prompt)
	}
	return fmt.Sprintf("answer #%d", f.calls), nil
}
