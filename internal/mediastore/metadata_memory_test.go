package mediastore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetadataIndex_PutGetListDelete(t *testing.T) {
	idx := NewInMemoryMetadataIndex()
	ctx := context.Background()

	old := UploadMetadata{ID: "old", Name: "old.mp4", Size: 1, UploadedAt: time.Now().Add(-48 * time.Hour)}
	fresh := UploadMetadata{ID: "fresh", Name: "fresh.mp4", Size: 2, UploadedAt: time.Now()}

	require.NoError(t, idx.Put(ctx, old))
	require.NoError(t, idx.Put(ctx, fresh))

	got, ok, err := idx.Get(ctx, "fresh")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, fresh, got)

	items, err := idx.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "fresh", items[0].ID, "List must be newest-first")

	removed, err := idx.DeleteOlderThan(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"old"}, removed)

	items, err = idx.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)

	require.NoError(t, idx.Delete(ctx, "fresh"))
	_, ok, err = idx.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.False(t, ok)
}
