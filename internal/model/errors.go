package model

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Error kinds returned by the Traceback service. Callers test with errors.Is.
var (
	// ErrValidation marks a missing or malformed field the user can correct.
	ErrValidation = errors.New("validation failed")
	// ErrConflict marks an operation refused because it would duplicate state.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks a referenced item, match, claim or token that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState marks an operation not allowed in the subject's current status.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError lists the offending fields and the rule each one broke.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FieldError returns a ValidationError for a single field.
func FieldError(field, rule string) error {
	return &ValidationError{Fields: map[string]string{field: rule}}
}
