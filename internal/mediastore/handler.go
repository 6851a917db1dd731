package mediastore

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/watchtogether/syncserver/internal/servererror"
	"github.com/watchtogether/syncserver/pkg/httpjson"
)

// Handler wires the Store and MetadataIndex into the HTTP surface
// spec.md §6 names: upload, range-aware streaming, and the admin
// listing/cleanup endpoints.
type Handler struct {
	Store         *Store
	Index         MetadataIndex
	MaxUploadSize int64
	Logger        *slog.Logger
	Now           func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Upload implements POST /api/upload: a single multipart field named
// "video" with a declared Content-Type beginning "video/" (spec.md §4.4).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadSize)
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		// MaxBytesReader wraps r.Body before multipart parsing runs, so
		// an oversized body surfaces here as a *http.MaxBytesError, not
		// later at Store.Save.
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpjson.WriteError(w, servererror.New(servererror.KindTooLarge, "upload exceeds the configured size cap"))
			return
		}
		httpjson.WriteError(w, servererror.New(servererror.KindBadRequest, "missing multipart field \"video\""))
		return
	}
	defer file.Close()

	declaredType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(declaredType, "video/") {
		httpjson.WriteError(w, servererror.New(servererror.KindBadRequest, "declared content type must be video/*"))
		return
	}

	id := uuid.NewString()
	size, err := h.Store.Save(id, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			httpjson.WriteError(w, servererror.New(servererror.KindTooLarge, "upload exceeds the configured size cap"))
			return
		}
		h.Logger.Error("upload save failed", "error", err)
		httpjson.WriteError(w, servererror.Wrap(servererror.KindTransientIO, err))
		return
	}

	meta := UploadMetadata{
		ID:         id,
		Name:       header.Filename,
		Size:       size,
		MimeType:   declaredType,
		StorageKey: id,
		UploadedAt: h.now(),
	}
	if err := h.Index.Put(r.Context(), meta); err != nil {
		h.Logger.Warn("metadata index write failed", "error", err)
	}

	httpjson.WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"video": map[string]any{
			"id":       meta.ID,
			"name":     meta.Name,
			"size":     meta.Size,
			"type":     meta.MimeType,
			"filename": meta.StorageKey,
		},
	})
}

// Stream implements GET /api/video/<storageKey>, honouring Range
// exactly as spec.md §4.4 specifies.
func (h *Handler) Stream(w http.ResponseWriter, r *http.Request) {
	storageKey := chi.URLParam(r, "storageKey")

	size, err := h.Store.Stat(storageKey)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}

	br, hasRange, err := ParseRange(r.Header.Get("Range"), size)
	if err != nil {
		w.Header().Set("Content-Range", "bytes */"+strconv.FormatInt(size, 10))
		httpjson.WriteError(w, err)
		return
	}

	f, err := h.Store.Open(storageKey, br.Start)
	if err != nil {
		httpjson.WriteError(w, err)
		return
	}
	defer f.Close()

	meta, _, _ := h.Index.Get(r.Context(), storageKey)
	contentType := ResolveContentType(r.URL.Query().Get("type"), meta.Name, h.Store.PathFor(storageKey))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Range, Accept-Ranges")
	w.Header().Set("Content-Length", strconv.FormatInt(br.Length(), 10))

	if hasRange {
		w.Header().Set("Content-Range", "bytes "+strconv.FormatInt(br.Start, 10)+"-"+strconv.FormatInt(br.End, 10)+"/"+strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusPartialContent)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if r.Method != http.MethodHead {
		io.CopyN(w, f, br.Length())
	}
}

// ListAdmin implements GET /api/admin/storage.
func (h *Handler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	items, err := h.Index.List(r.Context())
	if err != nil {
		httpjson.WriteError(w, servererror.Wrap(servererror.KindTransientIO, err))
		return
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// CleanupOlderThan implements DELETE /api/admin/cleanup?days=N.
func (h *Handler) CleanupOlderThan(w http.ResponseWriter, r *http.Request) {
	daysStr := r.URL.Query().Get("days")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days < 0 {
		httpjson.WriteError(w, servererror.New(servererror.KindBadRequest, "days must be a non-negative integer"))
		return
	}

	cutoff := h.now().Add(-time.Duration(days) * 24 * time.Hour)
	ids, err := h.Index.DeleteOlderThan(r.Context(), cutoff)
	if err != nil {
		httpjson.WriteError(w, servererror.Wrap(servererror.KindTransientIO, err))
		return
	}
	for _, id := range ids {
		if err := h.Store.Delete(id); err != nil {
			h.Logger.Warn("cleanup: failed to delete media bytes", "id", id, "error", err)
		}
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"deleted": ids})
}

// CleanupAll implements DELETE /api/admin/cleanup-all.
func (h *Handler) CleanupAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.Index.List(r.Context())
	if err != nil {
		httpjson.WriteError(w, servererror.Wrap(servererror.KindTransientIO, err))
		return
	}

	ids := make([]string, 0, len(items))
	for _, m := range items {
		ids = append(ids, m.ID)
		if err := h.Index.Delete(r.Context(), m.ID); err != nil {
			h.Logger.Warn("cleanup-all: failed to delete metadata", "id", m.ID, "error", err)
			continue
		}
		if err := h.Store.Delete(m.ID); err != nil {
			h.Logger.Warn("cleanup-all: failed to delete media bytes", "id", m.ID, "error", err)
		}
	}
	httpjson.WriteJSON(w, http.StatusOK, map[string]any{"deleted": ids})
}
