package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("metagen: missing configuration")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("metagen: code generation failed")
	// ErrNotValidated indicates a model that was not validated before
	// generation.
	ErrNotValidated = errors.New("metagen: model is not validated")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("metagen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("metagen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// GenerateError is a failure to render or write the code of one class.
type GenerateError struct {
	Class string // Class name
	File  string // Output file (if applicable)
	Cause error
}

// Error implements the error interface.
func (e *GenerateError) Error() string {
	var b strings.Builder
	b.WriteString("metagen: generate")
	if e.Class != "" {
		b.WriteString(" class ")
		b.WriteString(e.Class)
	}
	if e.File != "" {
		b.WriteString(" (")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerateError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerateError.
func (e *GenerateError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsGenerateError reports whether the error is a GenerateError.
func IsGenerateError(err error) bool {
	var genErr *GenerateError
	return errors.As(err, &genErr)
}
