package model

import (
	"errors"
	"sort"
	"strings"
)

var (
	// Record and trash errors
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrUnsupportedItemType = errors.New("unsupported item type")
	ErrUnknownVariant      = errors.New("unknown record variant")

	// Actor related errors
	ErrUnknownActor       = errors.New("unknown actor")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")

	// Generic errors
	ErrValidation = errors.New("validation failed")
)

// ValidationError lists every offending input field with a human readable reason.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// FieldError builds a ValidationError for a single field.
func FieldError(field string, reason string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: reason}}
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
