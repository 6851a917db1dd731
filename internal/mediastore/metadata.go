package mediastore

import (
	"context"
	"time"
)

// UploadMetadata is the admin-facing record of a single stored upload.
// The bytes themselves live only on the filesystem (Store); this is
// purely an index over them, kept in Redis per SPEC_FULL.md's DOMAIN
// STACK resolution of where go-redis fits this design.
type UploadMetadata struct {
	ID         string    `json:"id" redis:"id"`
	Name       string    `json:"name" redis:"name"`
	Size       int64     `json:"size" redis:"size"`
	MimeType   string    `json:"mime_type" redis:"mime_type"`
	StorageKey string    `json:"storage_key" redis:"storage_key"`
	UploadedAt time.Time `json:"uploaded_at" redis:"uploaded_at"`
}

// MetadataIndex is the interface the upload/admin HTTP handlers depend
// on, so tests can swap in an in-memory fake instead of a live Redis
// server, matching the teacher's repository-behind-service pattern.
type MetadataIndex interface {
	Put(ctx context.Context, m UploadMetadata) error
	Get(ctx context.Context, id string) (UploadMetadata, bool, error)
	List(ctx context.Context) ([]UploadMetadata, error)
	Delete(ctx context.Context, id string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error)
}
