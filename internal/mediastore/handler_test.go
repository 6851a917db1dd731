package mediastore

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	h := &Handler{
		Store:  store,
		Index:  NewInMemoryMetadataIndex(),
		Logger: slog.Default(),
	}

	r := chi.NewRouter()
	r.Post("/api/upload", h.Upload)
	r.Get("/api/video/{storageKey}", h.Stream)
	r.Get("/api/admin/storage", h.ListAdmin)
	return h, r
}

func multipartVideoBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	hdr := make(map[string][]string)
	hdr["Content-Disposition"] = []string{`form-data; name="video"; filename="` + filename + `"`}
	hdr["Content-Type"] = []string{contentType}
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return body, w.FormDataContentType()
}

func TestUploadThenRangeStream(t *testing.T) {
	_, router := newTestHandler(t)

	payload := bytes.Repeat([]byte("v"), 1_000_000)
	body, contentType := multipartVideoBody(t, "movie.mp4", "video/mp4", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Video struct {
			ID string `json:"id"`
		} `json:"video"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Video.ID)

	rangeReq := httptest.NewRequest(http.MethodGet, "/api/video/"+resp.Video.ID, nil)
	rangeReq.Header.Set("Range", "bytes=500000-500999")
	rangeRec := httptest.NewRecorder()
	router.ServeHTTP(rangeRec, rangeReq)

	assert.Equal(t, http.StatusPartialContent, rangeRec.Code)
	assert.Equal(t, "bytes 500000-500999/1000000", rangeRec.Header().Get("Content-Range"))
	got, err := io.ReadAll(rangeRec.Body)
	require.NoError(t, err)
	assert.Equal(t, payload[500000:501000], got)
}

func TestUpload_RejectsNonVideoContentType(t *testing.T) {
	_, router := newTestHandler(t)

	body, contentType := multipartVideoBody(t, "notes.txt", "text/plain", []byte("hello"))
	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_OversizedBodyIs413(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	h := &Handler{
		Store:         store,
		Index:         NewInMemoryMetadataIndex(),
		Logger:        slog.Default(),
		MaxUploadSize: 1024,
	}
	router := chi.NewRouter()
	router.Post("/api/upload", h.Upload)

	payload := bytes.Repeat([]byte("v"), 1_000_000)
	body, contentType := multipartVideoBody(t, "movie.mp4", "video/mp4", payload)

	req := httptest.NewRequest(http.MethodPost, "/api/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "size cap")
}

func TestStream_MissingFileIs404(t *testing.T) {
	_, router := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/video/does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
