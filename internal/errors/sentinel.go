// Package errors provides sentinel errors, structured error details, and
// exit code mapping for the devenv CLI.
package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates invalid user input or a configuration document
	// that fails schema validation.
	ErrValidation = errors.New("validation error")

	// ErrNotFound indicates an identity, directory entry, or alias has no registry entry.
	ErrNotFound = errors.New("not found")

	// ErrPermission indicates insufficient filesystem permissions.
	ErrPermission = errors.New("permission denied")

	// ErrClassification indicates an install token could not be classified,
	// for example because a referenced list file does not exist.
	ErrClassification = errors.New("classification error")

	// ErrBackend indicates the build backend process failed.
	ErrBackend = errors.New("backend failure")

	// ErrCorrupt indicates a stored configuration document could not be parsed.
	ErrCorrupt = errors.New("corrupt registry entry")

	// ErrEmptyQuery indicates a search was attempted without predicates.
	ErrEmptyQuery = errors.New("empty query")
)
