// Package apierr defines the error taxonomy shared by the backend client,
// the date helpers and the dispatcher.
package apierr

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError is raised client-side before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NetworkError means no response was received from the backend.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx backend response. Message and Detail mirror the
// top-level "message" and "detail" fields of the response body.
type HTTPError struct {
	Status  int
	Message string
	Detail  string
}

func (e *HTTPError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	case e.Detail != "":
		return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
	default:
		return fmt.Sprintf("http %d", e.Status)
	}
}

// OperationError is the uniform error returned by dispatcher operations.
// Message is the human-readable text also written to the state store.
type OperationError struct {
	Op      string
	Message string
	Err     error
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() error { return e.Err }

// Message extracts a user-facing message from err: an explicit top-level
// message first, then a nested detail, then fallback. Validation errors
// keep their own text. The result is never empty as long as fallback isn't.
func Message(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var he *HTTPError
	if errors.As(err, &he) {
		if m := strings.TrimSpace(he.Message); m != "" {
			return m
		}
		if d := strings.TrimSpace(he.Detail); d != "" {
			return d
		}
	}
	return fallback
}

// Status returns the HTTP status carried by err, or 0 when none was received.
func Status(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.Status
	}
	return 0
}
