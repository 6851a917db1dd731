// Package httpjson provides the small JSON request/response helpers the
// teacher's rest-handler.go calls through a pkg/rest package of the same
// shape (ReadJSON/WriteJSON/Envelope) that wasn't present in the
// retrieved snapshot; rebuilt here in the same idiom since every REST
// handler in this repo needs it.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/watchtogether/syncserver/internal/servererror"
)

type Envelope map[string]any

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func ReadJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

// WriteError maps err to an HTTP status + {"error": message} body. A
// *servererror.Error carries its own status and message; any other error
// is treated as an unexpected internal failure (500, generic message —
// the real error is left to the caller's own logging).
func WriteError(w http.ResponseWriter, err error) {
	if se, ok := servererror.As(err); ok {
		WriteJSON(w, se.Kind.HTTPStatus(), Envelope{"error": se.Message})
		return
	}
	WriteJSON(w, http.StatusInternalServerError, Envelope{"error": "internal error"})
}
