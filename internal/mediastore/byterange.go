package mediastore

import (
	"strconv"
	"strings"

	"github.com/watchtogether/syncserver/internal/servererror"
)

// ByteRange is an inclusive, fully-resolved [Start,End] slice of a file
// of the given total Size. A single range is supported, per spec.md
// §4.4 ("multipart ranges are not required").
type ByteRange struct {
	Start, End int64
	Size       int64
}

func (br ByteRange) Length() int64 { return br.End - br.Start + 1 }

// ParseRange resolves a `Range: bytes=a-b` header against size. An empty
// header yields a full-body range with hasRange=false (no Range was present,
// not an error). `b` defaults to size-1 when omitted. Any range with
// start ≥ size or start > end is a servererror.KindRangeNotSatisfiable.
func ParseRange(header string, size int64) (br ByteRange, hasRange bool, err error) {
	if header == "" {
		return ByteRange{Start: 0, End: size - 1, Size: size}, false, nil
	}

	const prefix = "bytes="
	if !strings.HasPrefix(header, prefix) {
		return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "unsupported range unit")
	}
	spec := strings.TrimPrefix(header, prefix)
	if strings.Contains(spec, ",") {
		return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "multiple ranges not supported")
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "malformed range")
	}

	var start, end int64
	if parts[0] == "" {
		// Suffix range "-N": last N bytes.
		n, perr := strconv.ParseInt(parts[1], 10, 64)
		if perr != nil || n <= 0 {
			return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "malformed suffix range")
		}
		start = size - n
		if start < 0 {
			start = 0
		}
		end = size - 1
	} else {
		start, err = strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "malformed range start")
		}
		if parts[1] == "" {
			end = size - 1
		} else {
			end, err = strconv.ParseInt(parts[1], 10, 64)
			if err != nil {
				return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "malformed range end")
			}
		}
	}

	if start >= size || start > end {
		return ByteRange{}, false, servererror.New(servererror.KindRangeNotSatisfiable, "range outside file bounds")
	}
	if end >= size {
		end = size - 1
	}

	return ByteRange{Start: start, End: end, Size: size}, true, nil
}
