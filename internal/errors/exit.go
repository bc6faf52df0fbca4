package errors

import (
	"errors"
	"strconv"
)

// Exit codes returned by the devenv binary.
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitValidationError  = 2
	ExitClassification   = 3
	ExitPermissionDenied = 4
	ExitNotFound         = 5
	ExitBackendFailure   = 6
)

// ExitError wraps an error with an exit code.
// Printed reports whether the command layer already logged the error, so
// main does not print it a second time.
type ExitError struct {
	Code    int
	Err     error
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given error and exit code.
func NewExitError(err error, code int) *ExitError {
	return &ExitError{Err: err, Code: code}
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrEmptyQuery):
		return ExitValidationError
	case errors.Is(err, ErrClassification):
		return ExitClassification
	case errors.Is(err, ErrPermission):
		return ExitPermissionDenied
	case errors.Is(err, ErrNotFound):
		return ExitNotFound
	case errors.Is(err, ErrBackend):
		return ExitBackendFailure
	default:
		return ExitGeneralError
	}
}
