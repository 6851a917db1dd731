// Package mediastore implements the Media Store & Streamer: content
// write-once filesystem storage for uploaded video bytes, HTTP
// byte-range serving, and a metadata index for the admin listing/cleanup
// endpoints.
package mediastore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/watchtogether/syncserver/internal/servererror"
)

// Store is single-writer-per-upload, multi-reader filesystem storage
// rooted at Dir. Bytes are written once under an opaque id and never
// renamed, inspected, or transcoded (spec.md §4.4).
type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{Dir: dir}, nil
}

func (s *Store) path(storageKey string) string {
	return filepath.Join(s.Dir, filepath.Base(storageKey))
}

// PathFor exposes the on-disk path for a storage key, for best-effort
// content sniffing at the HTTP boundary (ResolveContentType).
func (s *Store) PathFor(storageKey string) string {
	return s.path(storageKey)
}

// Save streams src to storageKey's path, returning the number of bytes
// written. It truncates any existing file at that path, though storage
// keys are minted fresh per upload so collisions should not occur.
func (s *Store) Save(storageKey string, src io.Reader) (int64, error) {
	f, err := os.OpenFile(s.path(storageKey), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open for write: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, src)
	if err != nil {
		return n, fmt.Errorf("write upload: %w", err)
	}
	return n, nil
}

// Stat reports the stored size of storageKey, or servererror Kind
// not-found if it is absent.
func (s *Store) Stat(storageKey string) (int64, error) {
	info, err := os.Stat(s.path(storageKey))
	if errors.Is(err, os.ErrNotExist) {
		return 0, servererror.New(servererror.KindNotFound, "media not found")
	}
	if err != nil {
		return 0, servererror.Wrap(servererror.KindTransientIO, fmt.Errorf("stat media: %w", err))
	}
	return info.Size(), nil
}

// Open returns a handle positioned at offset, for streaming a slice of
// the stored bytes. Callers are responsible for closing it.
func (s *Store) Open(storageKey string, offset int64) (*os.File, error) {
	f, err := os.Open(s.path(storageKey))
	if errors.Is(err, os.ErrNotExist) {
		return nil, servererror.New(servererror.KindNotFound, "media not found")
	}
	if err != nil {
		return nil, servererror.Wrap(servererror.KindTransientIO, fmt.Errorf("open media: %w", err))
	}
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			f.Close()
			return nil, servererror.Wrap(servererror.KindTransientIO, fmt.Errorf("seek media: %w", err))
		}
	}
	return f, nil
}

// Delete removes the stored bytes for storageKey. A missing file is not
// an error, so cleanup is idempotent.
func (s *Store) Delete(storageKey string) error {
	if err := os.Remove(s.path(storageKey)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return servererror.Wrap(servererror.KindTransientIO, fmt.Errorf("delete media: %w", err))
	}
	return nil
}
