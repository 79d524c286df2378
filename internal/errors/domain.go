package errors

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input: wrong embedding length, empty text,
// missing required field. Never retried.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}

	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ProviderError reports an embedding provider failure. StatusCode is zero for
// network-level failures.
type ProviderError struct {
	StatusCode int
	Attempts   int
	Retryable  bool
	Err        error
}

func (e *ProviderError) Error() string {
	msg := "provider error"

	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}

	if e.Attempts > 1 {
		msg = fmt.Sprintf("%s after %d attempts", msg, e.Attempts)
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// SchemaError reports a physical table schema that does not match the declared
// definition. Fatal at startup.
type SchemaError struct {
	Table    string
	Column   string
	Expected string
	Actual   string
}

func (e *SchemaError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("schema error: table %s: expected %s, got %s", e.Table, e.Expected, e.Actual)
	}

	return fmt.Sprintf("schema error: table %s column %s: expected %s, got %s",
		e.Table, e.Column, e.Expected, e.Actual)
}

// NotFoundError reports a record absent on read or update
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

// creates a validation error for a field
func Validation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// creates a not found error for a record id
func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// creates a dimension mismatch validation error
func DimensionMismatch(field string, expected, actual int) error {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("expected %d dimensions, got %d", expected, actual),
	}
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsProvider(err error) bool {
	var target *ProviderError
	return errors.As(err, &target)
}

func IsSchema(err error) bool {
	var target *SchemaError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
