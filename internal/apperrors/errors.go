// Package apperrors defines the error taxonomy shared by services, handlers
// and the retry helper.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports bad input. It is never retried.
type ValidationError struct {
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Code        string   `json:"code"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, code, message string, suggestions ...string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message, Suggestions: suggestions}
}

// ValidationErrors collects several field errors.
type ValidationErrors []*ValidationError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

// ErrOrNil returns nil for an empty collection.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// NetworkError is a failed call to a remote dependency.
type NetworkError struct {
	Message   string
	Status    int
	Retryable bool
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("network error (status %d): %s", e.Status, e.Message)
	}
	return "network error: " + e.Message
}

// ShouldRetry is true only when flagged retryable and not a 4xx.
func (e *NetworkError) ShouldRetry() bool {
	if e.Status >= 400 && e.Status < 500 {
		return false
	}
	return e.Retryable
}

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Operation string
	Err       error
	Retryable bool
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps err with the operation name; retryability comes from
// the storage error classifier. Nil stays nil.
func Persistence(operation string, err error) error {
	if err == nil {
		return nil
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	retryable, _ := ClassifyStorageError(err)
	return &PersistenceError{Operation: operation, Err: err, Retryable: retryable}
}

// FrameworkError is an internal failure of a planning framework or its
// computation.
type FrameworkError struct {
	FrameworkID string
	Message     string
	Recoverable bool
}

func (e *FrameworkError) Error() string {
	return fmt.Sprintf("framework %s: %s", e.FrameworkID, e.Message)
}

// IsRetryable reports whether the retry helper should try again.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var ve *ValidationError
	var ves ValidationErrors
	if errors.As(err, &ve) || errors.As(err, &ves) {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return false
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.ShouldRetry()
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	var fe *FrameworkError
	if errors.As(err, &fe) {
		return fe.Recoverable
	}
	return true
}
