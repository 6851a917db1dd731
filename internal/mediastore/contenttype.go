package mediastore

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// extensionTable is spec.md §4.4's fallback lookup, keyed by the
// original filename's extension recorded at upload time (the storage
// key itself carries no extension).
var extensionTable = map[string]string{
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

const defaultContentType = "video/mp4"

// ResolveContentType implements the precedence spec.md §9 resolves:
// query override, then the extension table keyed off originalName, then
// best-effort sniffing of the stored bytes, then the video/mp4 default.
func ResolveContentType(queryOverride, originalName string, path string) string {
	if queryOverride != "" {
		return queryOverride
	}

	if ext := strings.ToLower(filepath.Ext(originalName)); ext != "" {
		if ct, ok := extensionTable[ext]; ok {
			return ct
		}
	}

	if path != "" {
		if mt, err := mimetype.DetectFile(path); err == nil && mt != nil {
			if strings.HasPrefix(mt.String(), "video/") {
				return mt.String()
			}
		}
	}

	return defaultContentType
}
