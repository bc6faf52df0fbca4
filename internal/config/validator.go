package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString("config validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Validate checks field values of a loaded configuration.
func Validate(cfg *Config) error {
	var errs ValidationErrors

	if strings.TrimSpace(cfg.RegistryDir) == "" {
		errs = append(errs, ValidationError{
			Field:   KeyRegistryDir,
			Message: "must not be empty or whitespace only",
		})
	}

	if strings.TrimSpace(cfg.Backend.Command) == "" {
		errs = append(errs, ValidationError{
			Field:   KeyBackendCommand,
			Message: "must not be empty or whitespace only",
		})
	}

	if dir := cfg.Backend.BaseDir; dir != "" && !strings.HasPrefix(dir, "~") && !filepath.IsAbs(dir) {
		errs = append(errs, ValidationError{
			Field:   KeyBackendBaseDir,
			Message: "must be an absolute path or start with ~",
		})
	}

	if cfg.Backend.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   KeyBackendTimeout,
			Message: "must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ValidateFile loads and validates the configuration file at path. Unknown
// keys are reported alongside field errors.
func ValidateFile(path string) error {
	loader := NewLoader()
	cfg, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}

	var errs ValidationErrors
	for _, key := range loader.UnknownKeys() {
		errs = append(errs, ValidationError{Field: key, Message: "unknown configuration key"})
	}
	if err := Validate(cfg); err != nil {
		errs = append(errs, err.(ValidationErrors)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
