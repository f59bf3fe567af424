package domain

import (
	"errors"
)

// Common domain errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")

	// Object store errors
	ErrObjectStore            = errors.New("object store error")
	ErrObjectStoreUnavailable = errors.New("object store client unavailable")

	// Size service errors
	ErrRecomputeInProgress = errors.New("size recomputation already in progress")
)

// ObjectStoreError is returned when listing the object store fails.
// It matches ErrObjectStore with errors.Is.
type ObjectStoreError struct {
	Prefix string
	Code   string // provider error code, if any
	Err    error
}

// Error returns the error message
func (e *ObjectStoreError) Error() string {
	msg := "object store listing failed"
	if e.Prefix != "" {
		msg += " for prefix " + e.Prefix
	}
	if e.Code != "" {
		msg += " (" + e.Code + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *ObjectStoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrObjectStore
func (e *ObjectStoreError) Is(target error) bool {
	return target == ErrObjectStore
}

// NewObjectStoreError creates a new ObjectStoreError
func NewObjectStoreError(prefix, code string, err error) *ObjectStoreError {
	return &ObjectStoreError{Prefix: prefix, Code: code, Err: err}
}

// IsObjectStoreError returns true if err is a provider-level listing failure
func IsObjectStoreError(err error) bool {
	return errors.Is(err, ErrObjectStore)
}
