package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Storage and access outcomes shared by every layer.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
)

// Soft failures: callers usually degrade instead of failing the request.
var (
	ErrRouting        = errors.New("no handler resolvable")
	ErrRetrieval      = errors.New("retrieval store unavailable")
	ErrGeneration     = errors.New("generation service failure")
	ErrSchemaMismatch = errors.New("structured output does not match schema")
)

// Validation session protocol errors, always surfaced to the caller.
var (
	ErrUnknownSession    = errors.New("unknown validation session")
	ErrOutOfOrderAnswer  = errors.New("answer out of order")
	ErrAlreadyFinalized  = errors.New("already finalized")
	ErrSessionIncomplete = errors.New("session has unanswered questions")
)

type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every rejected input field. It matches ErrValidation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Fields maps field name to message. For a repeated field the first message
// is kept.
func (e *ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(e.Errors))
	for _, fe := range e.Errors {
		if _, seen := out[fe.Field]; !seen {
			out[fe.Field] = fe.Message
		}
	}
	return out
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// GenerationError is a failed call to the generation service. errors.Is
// matches both ErrGeneration and the underlying cause.
type GenerationError struct {
	Op  string
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }
