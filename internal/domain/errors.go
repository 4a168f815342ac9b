package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation error")
	ErrInvalidState     = errors.New("invalid state")
	ErrConflict         = errors.New("conflict")
	ErrGateway          = errors.New("payment gateway error")
	ErrInternal         = errors.New("internal error")
	ErrInvalidSignature = errors.New("invalid signature")
)

// ValidationError carries field-level messages. It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// FieldError is a business-rule failure tied to one request field, such as
// insufficient stock on "quantity". Kind is one of the sentinel errors above.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func NewFieldError(kind error, field, message string) *FieldError {
	return &FieldError{Kind: kind, Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}

// IsBusiness reports errors that are expected outcomes of a request rather
// than faults worth logging.
func IsBusiness(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrValidation, ErrInvalidState, ErrConflict} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}
