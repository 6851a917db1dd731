package mediastore

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchtogether/syncserver/internal/servererror"
)

func TestStore_SaveStatOpenRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("x"), 1_000_000)
	n, err := s.Save("vid-1", bytes.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), n)

	size, err := s.Stat("vid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size)

	f, err := s.Open("vid-1", 500000)
	require.NoError(t, err)
	defer f.Close()

	got, err := io.ReadAll(io.LimitReader(f, 1000))
	require.NoError(t, err)
	assert.Equal(t, payload[500000:501000], got, "P7: bytes at the requested offset must match the stored bytes")
}

func TestStore_StatMissingFileIsNotFound(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Stat("does-not-exist")
	se, ok := servererror.As(err)
	require.True(t, ok)
	assert.Equal(t, servererror.KindNotFound, se.Kind)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save("vid-1", bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	require.NoError(t, s.Delete("vid-1"))
	require.NoError(t, s.Delete("vid-1"))

	_, err = s.Stat("vid-1")
	assert.Error(t, err)
}
