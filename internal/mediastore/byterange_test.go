package mediastore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/watchtogether/syncserver/internal/servererror"
)

func TestParseRange_NoHeaderReturnsFullBody(t *testing.T) {
	br, hasRange, err := ParseRange("", 1000)
	assert.NoError(t, err)
	assert.False(t, hasRange)
	assert.Equal(t, int64(0), br.Start)
	assert.Equal(t, int64(999), br.End)
	assert.Equal(t, int64(1000), br.Length())
}

func TestParseRange_ExplicitRange(t *testing.T) {
	// Scenario 4 from spec.md §8: a 1,000,000-byte file, bytes 500000-500999.
	br, hasRange, err := ParseRange("bytes=500000-500999", 1_000_000)
	assert.NoError(t, err)
	assert.True(t, hasRange)
	assert.Equal(t, int64(500000), br.Start)
	assert.Equal(t, int64(500999), br.End)
	assert.Equal(t, int64(1000), br.Length())
}

func TestParseRange_OpenEndedDefaultsToSizeMinusOne(t *testing.T) {
	br, hasRange, err := ParseRange("bytes=100-", 1000)
	assert.NoError(t, err)
	assert.True(t, hasRange)
	assert.Equal(t, int64(100), br.Start)
	assert.Equal(t, int64(999), br.End)
}

func TestParseRange_SuffixRange(t *testing.T) {
	br, hasRange, err := ParseRange("bytes=-500", 1000)
	assert.NoError(t, err)
	assert.True(t, hasRange)
	assert.Equal(t, int64(500), br.Start)
	assert.Equal(t, int64(999), br.End)
}

func TestParseRange_EndClampedToSize(t *testing.T) {
	br, _, err := ParseRange("bytes=0-999999", 1000)
	assert.NoError(t, err)
	assert.Equal(t, int64(999), br.End)
}

func TestParseRange_StartBeyondSizeIsNotSatisfiable(t *testing.T) {
	_, _, err := ParseRange("bytes=1000-1001", 1000)
	se, ok := servererror.As(err)
	assert.True(t, ok)
	assert.Equal(t, servererror.KindRangeNotSatisfiable, se.Kind)
}

func TestParseRange_StartAfterEndIsNotSatisfiable(t *testing.T) {
	_, _, err := ParseRange("bytes=500-100", 1000)
	se, ok := servererror.As(err)
	assert.True(t, ok)
	assert.Equal(t, servererror.KindRangeNotSatisfiable, se.Kind)
}
