// Package gen provides the router code generation for trpcgen.
package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidConfig indicates a configuration error.
	ErrInvalidConfig = errors.New("trpcgen: invalid configuration")
	// ErrInvalidAnnotation indicates a malformed documentation annotation.
	ErrInvalidAnnotation = errors.New("trpcgen: invalid annotation")
	// ErrUnknownOperation indicates an action the classifier cannot map.
	ErrUnknownOperation = errors.New("trpcgen: unknown operation")
	// ErrMissingProvider indicates that provider metadata is required but absent.
	ErrMissingProvider = errors.New("trpcgen: missing provider metadata")
	// ErrGenerationFailed indicates a code generation failure.
	ErrGenerationFailed = errors.New("trpcgen: code generation failed")
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
		return fmt.Sprintf("trpcgen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("trpcgen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// AnnotationError represents a documentation annotation that could not be parsed.
type AnnotationError struct {
	Entity  string
	Pos     int // byte offset in the documentation string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AnnotationError) Error() string {
	var b strings.Builder
	b.WriteString("trpcgen: annotation error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	fmt.Fprintf(&b, " at offset %d", e.Pos)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *AnnotationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for AnnotationError.
func (e *AnnotationError) Is(target error) bool {
	return target == ErrInvalidAnnotation
}

// OperationError represents an action the classifier does not know.
type OperationError struct {
	Entity string
	Action string
}

// Error implements the error interface.
func (e *OperationError) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("trpcgen: unknown operation %q on entity %s", e.Action, e.Entity)
	}
	return fmt.Sprintf("trpcgen: unknown operation %q", e.Action)
}

// Is reports whether the target matches the sentinel error for OperationError.
func (e *OperationError) Is(target error) bool {
	return target == ErrUnknownOperation
}

// EntityError represents a failure that is fatal for a single entity artifact.
type EntityError struct {
	Entity  string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *EntityError) Error() string {
	var b strings.Builder
	b.WriteString("trpcgen: entity ")
	b.WriteString(e.Entity)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *EntityError) Unwrap() error {
	return e.Cause
}

// NewEntityError creates a new EntityError.
func NewEntityError(entity, message string, cause error) *EntityError {
	return &EntityError{
		Entity:  entity,
		Message: message,
		Cause:   cause,
	}
}

// GenerationError represents a code generation error.
type GenerationError struct {
	Phase   string // "helpers", "router", "aggregator", "write", etc.
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	var b strings.Builder
	b.WriteString("trpcgen: generation error")
	if e.Phase != "" {
		b.WriteString(" in phase ")
		b.WriteString(e.Phase)
	}
	if e.File != "" {
		b.WriteString(" (file: ")
		b.WriteString(e.File)
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for GenerationError.
func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailed
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(phase, file, message string, cause error) *GenerationError {
	return &GenerationError{
		Phase:   phase,
		File:    file,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsAnnotationError reports whether the error is an AnnotationError.
func IsAnnotationError(err error) bool {
	var annErr *AnnotationError
	return errors.As(err, &annErr)
}

// IsOperationError reports whether the error is an OperationError.
func IsOperationError(err error) bool {
	var opErr *OperationError
	return errors.As(err, &opErr)
}

// IsEntityError reports whether the error is an EntityError.
func IsEntityError(err error) bool {
	var entErr *EntityError
	return errors.As(err, &entErr)
}

// IsGenerationError reports whether the error is a GenerationError.
func IsGenerationError(err error) bool {
	var genErr *GenerationError
	return errors.As(err, &genErr)
}
