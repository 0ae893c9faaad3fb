// Package apperror defines the application's error taxonomy.
//
// Every layer returns these (wrapped with fmt.Errorf("...: %w")) and only the
// HTTP handler decides what status code each one becomes:
//
//	ErrValidation  → 400, client sent bad fields
//	ErrNotFound    → login mismatch, reported as 200 {"success":false}
//	ErrPersistence → 500, the store failed; details stay in the logs
//	ErrUnauthorized / ErrForbidden → listing guard said no
package apperror

import (
	"errors"
	"fmt"

	"github.com/rs/xid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrPersistence  = errors.New("persistence failure")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// FieldError is one failing rule on one input field.
// The JSON shape is part of the public API: {"field":"email","message":"..."}.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error

	// Fields lists every failing field, in schema order, for ErrValidation.
	Fields []FieldError

	// Op and Incident are set for ErrPersistence. Incident is an opaque id
	// logged next to the driver error so an operator can find it; neither is
	// ever shown to the client.
	Op       string
	Incident string
	cause    error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (incident %s): %v", e.Message, e.Incident, e.cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying driver error of a persistence failure, or nil.
func (e *AppError) Cause() error {
	return e.cause
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
		Fields:  []FieldError{{Field: field, Message: message}},
	}
}

// Invalid bundles several field failures into one validation error.
// The first entry also populates Field/Message so single-field callers keep working.
func Invalid(fields []FieldError) *AppError {
	e := &AppError{
		Err:     ErrValidation,
		Message: "validation failed",
		Fields:  fields,
	}
	if len(fields) > 0 {
		e.Field = fields[0].Field
		e.Message = fields[0].Message
	}
	return e
}

// Persistence wraps a storage failure. The driver error is kept for logging
// only; Unwrap exposes ErrPersistence and nothing else, so no row data or SQL
// text can leak through errors.As on the driver's types.
func Persistence(op string, cause error) *AppError {
	return &AppError{
		Err:      ErrPersistence,
		Message:  op + " failed",
		Op:       op,
		Incident: xid.New().String(),
		cause:    cause,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// FieldErrors extracts the field list from a validation error anywhere in
// err's chain. It returns nil for any other error.
func FieldErrors(err error) []FieldError {
	var appErr *AppError
	if errors.As(err, &appErr) && errors.Is(appErr.Err, ErrValidation) {
		return appErr.Fields
	}
	return nil
}
