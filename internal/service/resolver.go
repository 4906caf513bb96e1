package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/dossierr/case-assistant/internal/model"
)

// indexBuilder is what the resolver needs from the Indexer.
type indexBuilder interface {
	Build(ctx context.Context, caseID string) (model.IndexHandle, error)
}

// Resolver decides per case whether to reuse the persisted index or build
// it. A per-case lock makes concurrent first queries for the same case run
// exactly one build; unrelated cases never wait on each other.
type Resolver struct {
	index   VectorIndex
	builder indexBuilder

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewResolver(index VectorIndex, builder indexBuilder) *Resolver {
	return &Resolver{
		index:   index,
		builder: builder,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Resolve returns the case's active index handle, building it first if none
// is persisted.
func (r *Resolver) Resolve(ctx context.Context, caseID string) (model.IndexHandle, error) {
	lock := r.caseLock(caseID)
	lock.Lock()
	defer lock.Unlock()

	handle, ok, err := r.index.Stat(ctx, caseID)
	if err != nil {
		return model.IndexHandle{}, fmt.Errorf("%w: stat case %s: %v", ErrRetrievalUnavailable, caseID, err)
	}
	if ok {
		log.Printf("reusing index for case %s (%d entries)", caseID, handle.Entries)
		return handle, nil
	}
	log.Printf("no index found for case %s, building", caseID)
	return r.builder.Build(ctx, caseID)
}

// ForceBuild rebuilds unconditionally, still under the case lock so it
// cannot interleave with a concurrent resolve-and-build.
func (r *Resolver) ForceBuild(ctx context.Context, caseID string) (model.IndexHandle, error) {
	lock := r.caseLock(caseID)
	lock.Lock()
	defer lock.Unlock()
	return r.builder.Build(ctx, caseID)
}

func (r *Resolver) caseLock(caseID string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[caseID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[caseID] = lock
	}
	return lock
}
