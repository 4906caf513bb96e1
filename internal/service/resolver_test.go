package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dossierr/case-assistant/internal/model"
)

type countingBuilder struct {
	builds int32
	index  *fakeIndex
	delay  time.Duration
}

func (b *countingBuilder) Build(ctx context.Context, caseID string) (model.IndexHandle, error) {
	atomic.AddInt32(&b.builds, 1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return b.index.Rebuild(ctx, caseID, []model.IndexEntry{
		{Chunk: model.Chunk{ID: caseID + "_chunk_0", Source: "doc.txt", Text: "content"}},
	})
}

func TestResolveBuildsOnceForNewCase(t *testing.T) {
	idx := newFakeIndex()
	builder := &countingBuilder{index: idx}
	r := NewResolver(idx, builder)

	handle, err := r.Resolve(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, handle.Entries)

	_, err = r.Resolve(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&builder.builds), "second resolve must reuse the index")
}

func TestConcurrentResolveTriggersSingleBuild(t *testing.T) {
	idx := newFakeIndex()
	builder := &countingBuilder{index: idx, delay: 20 * time.Millisecond}
	r := NewResolver(idx, builder)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), "never-indexed")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&builder.builds))
}

func TestConcurrentResolveDifferentCasesDoNotSerialize(t *testing.T) {
	idx := newFakeIndex()
	builder := &countingBuilder{index: idx}
	r := NewResolver(idx, builder)

	var wg sync.WaitGroup
	for _, caseID := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := r.Resolve(context.Background(), id)
			assert.NoError(t, err)
		}(caseID)
	}
	wg.Wait()

	assert.Equal(t, int32(3), atomic.LoadInt32(&builder.builds))
}

func TestForceBuildRebuildsExisting(t *testing.T) {
	idx := newFakeIndex()
	builder := &countingBuilder{index: idx}
	r := NewResolver(idx, builder)

	_, err := r.Resolve(context.Background(), "case")
	require.NoError(t, err)
	_, err = r.ForceBuild(context.Background(), "case")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&builder.builds))
}
