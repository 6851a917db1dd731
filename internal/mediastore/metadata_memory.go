package mediastore

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// InMemoryMetadataIndex is a MetadataIndex usable in tests or a
// single-process deployment without Redis. It carries no durability
// guarantee, consistent with spec.md §1's in-memory non-goal.
type InMemoryMetadataIndex struct {
	mu    sync.Mutex
	items map[string]UploadMetadata
}

func NewInMemoryMetadataIndex() *InMemoryMetadataIndex {
	return &InMemoryMetadataIndex{items: make(map[string]UploadMetadata)}
}

func (idx *InMemoryMetadataIndex) Put(_ context.Context, m UploadMetadata) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.items[m.ID] = m
	return nil
}

func (idx *InMemoryMetadataIndex) Get(_ context.Context, id string) (UploadMetadata, bool, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	m, ok := idx.items[id]
	return m, ok, nil
}

func (idx *InMemoryMetadataIndex) List(_ context.Context) ([]UploadMetadata, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	out := make([]UploadMetadata, 0, len(idx.items))
	for _, m := range idx.items {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b UploadMetadata) int {
		return b.UploadedAt.Compare(a.UploadedAt)
	})
	return out, nil
}

func (idx *InMemoryMetadataIndex) Delete(_ context.Context, id string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.items, id)
	return nil
}

func (idx *InMemoryMetadataIndex) DeleteOlderThan(_ context.Context, cutoff time.Time) ([]string, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var removed []string
	for id, m := range idx.items {
		if m.UploadedAt.Before(cutoff) {
			delete(idx.items, id)
			removed = append(removed, id)
		}
	}
	return removed, nil
}
