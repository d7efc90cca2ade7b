package api

import (
	"errors"
	"fmt"
)

var (
	// ErrTranslationFailed marks any failed /translate call.
	ErrTranslationFailed = errors.New("translation request failed")
	// ErrPersistenceFailed marks any failed /highlight call.
	ErrPersistenceFailed = errors.New("persistence request failed")
)

// RequestError describes a failed backend call. It matches both its kind
// (ErrTranslationFailed or ErrPersistenceFailed) and the underlying cause
// with errors.Is.
type RequestError struct {
	Op     string
	Status int // HTTP status, 0 when no response was received
	Err    error
	kind   error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{e.kind, e.Err}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Detail)
	}
	return fmt.Sprintf("unexpected status %d", e.Code)
}
