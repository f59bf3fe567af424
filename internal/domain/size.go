package domain

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// SizeKind tags a Size as either a byte count or a failure
type SizeKind int

const (
	// SizeOK is a successfully computed byte count
	SizeOK SizeKind = iota
	// SizeUnavailable means the object store client could not be initialized
	SizeUnavailable
	// SizeObjectStoreFailed means listing the object store failed
	SizeObjectStoreFailed
	// SizeInvalid is a negative value that matches no known sentinel
	SizeInvalid
)

// Sentinel encodings stored in the same column as real sizes.
const (
	SentinelUnavailable int64 = -1
	SentinelObjectStore int64 = -3
)

// String returns the kind name
func (k SizeKind) String() string {
	switch k {
	case SizeOK:
		return "ok"
	case SizeUnavailable:
		return "object_store_unavailable"
	case SizeObjectStoreFailed:
		return "object_store_error"
	default:
		return "invalid"
	}
}

// Size is the result of a site size computation. Failures travel in the
// same value as successes so they can be cached, but arithmetic is only
// possible after checking Bytes' ok result.
type Size struct {
	value int64
	kind  SizeKind
}

// BytesSize returns a successful Size. Negative counts are decoded as sentinels.
func BytesSize(bytes int64) Size {
	if bytes < 0 {
		return DecodeSize(bytes)
	}
	return Size{value: bytes, kind: SizeOK}
}

// ErrorSize returns a failed Size of the given kind
func ErrorSize(kind SizeKind) Size {
	switch kind {
	case SizeUnavailable:
		return Size{value: SentinelUnavailable, kind: kind}
	case SizeObjectStoreFailed:
		return Size{value: SentinelObjectStore, kind: kind}
	default:
		return Size{value: SentinelObjectStore, kind: SizeObjectStoreFailed}
	}
}

// DecodeSize converts a stored integer back into a Size
func DecodeSize(v int64) Size {
	switch {
	case v >= 0:
		return Size{value: v, kind: SizeOK}
	case v == SentinelUnavailable:
		return Size{value: v, kind: SizeUnavailable}
	case v == SentinelObjectStore:
		return Size{value: v, kind: SizeObjectStoreFailed}
	default:
		return Size{value: v, kind: SizeInvalid}
	}
}

// Encode returns the integer stored at the persistence boundary
func (s Size) Encode() int64 {
	return s.value
}

// Bytes returns the byte count and whether the size is a real count
func (s Size) Bytes() (int64, bool) {
	if s.kind != SizeOK {
		return 0, false
	}
	return s.value, true
}

// Kind returns the size's tag
func (s Size) Kind() SizeKind {
	return s.kind
}

// IsError returns true for sentinel sizes
func (s Size) IsError() bool {
	return s.kind != SizeOK
}

// Add returns s plus n bytes. Error sizes are returned unchanged.
func (s Size) Add(n int64) Size {
	if s.kind != SizeOK {
		return s
	}
	return Size{value: s.value + n, kind: SizeOK}
}

// String returns a human-readable representation
func (s Size) String() string {
	if s.kind != SizeOK {
		return fmt.Sprintf("error(%s)", s.kind)
	}
	return humanize.IBytes(uint64(s.value))
}
