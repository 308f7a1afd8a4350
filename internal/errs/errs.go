// Package errs defines the error kinds returned by the customer operations.
// Callers match them with errors.As.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError reports required inputs that were missing or blank.
type ValidationError struct {
	Fields []string
}

// NewValidation returns a ValidationError for the given field names.
func NewValidation(fields ...string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return fmt.Sprintf("%s is required", e.Fields[0])
	}
	return "required fields missing: " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports a reference to an account that has no stored record.
type NotFoundError struct {
	AccountNumber string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("customer %s not found", e.AccountNumber)
}

// StorageError wraps an I/O failure reading or writing a record.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// SendError wraps any failure in the email transport pipeline.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("failed to send email: %v", e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }

// Process exit codes per error kind.
const (
	ExitGeneric    = 1
	ExitValidation = 2
	ExitNotFound   = 3
	ExitStorage    = 4
	ExitSend       = 5
)

// ExitCode maps err to a process exit code. A nil error maps to 0.
func ExitCode(err error) int {
	var (
		ve *ValidationError
		nf *NotFoundError
		se *StorageError
		sd *SendError
	)
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ve):
		return ExitValidation
	case errors.As(err, &nf):
		return ExitNotFound
	case errors.As(err, &se):
		return ExitStorage
	case errors.As(err, &sd):
		return ExitSend
	default:
		return ExitGeneric
	}
}
