package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeConfig   ErrorType = "config"
	ErrorTypeIO       ErrorType = "io"
	ErrorTypeNetwork  ErrorType = "network"
	ErrorTypeInternal ErrorType = "internal"
)

// ShowcaseError is a structured error type with context.
type ShowcaseError struct {
	Type    ErrorType
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
	Demo    string
	Path    string
}

// Error implements the error interface.
func (e *ShowcaseError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Demo != "" {
		parts = append(parts, "demo:"+e.Demo)
	}

	if e.Path != "" {
		parts = append(parts, e.Path)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *ShowcaseError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *ShowcaseError) Is(target error) bool {
	var t *ShowcaseError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *ShowcaseError) WithContext(key string, value interface{}) *ShowcaseError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithPath adds the logical source path the error relates to.
func (e *ShowcaseError) WithPath(path string) *ShowcaseError {
	e.Path = path

	return e
}

// WithDemo adds demo context.
func (e *ShowcaseError) WithDemo(demo string) *ShowcaseError {
	e.Demo = demo

	return e
}

// Error creation functions

// NewConfigError creates a configuration error. Configuration errors are
// authoring mistakes and are never retried.
func NewConfigError(code, message string, cause error) *ShowcaseError {
	return &ShowcaseError{
		Type:    ErrorTypeConfig,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *ShowcaseError {
	return &ShowcaseError{
		Type:    ErrorTypeIO,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewCollaboratorError wraps a failure reported by an external collaborator.
func NewCollaboratorError(code, message string, cause error) *ShowcaseError {
	return &ShowcaseError{
		Type:    ErrorTypeNetwork,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *ShowcaseError {
	return &ShowcaseError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsConfigError checks if an error is a configuration error.
func IsConfigError(err error) bool {
	return hasType(err, ErrorTypeConfig)
}

// IsCollaboratorError checks if an error was reported by an external collaborator.
func IsCollaboratorError(err error) bool {
	return hasType(err, ErrorTypeNetwork)
}

// IsInternalError checks if an error is an internal defect.
func IsInternalError(err error) bool {
	return hasType(err, ErrorTypeInternal)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code string) bool {
	var se *ShowcaseError
	if errors.As(err, &se) {
		return se.Code == code
	}

	return false
}

func hasType(err error, t ErrorType) bool {
	var se *ShowcaseError
	if errors.As(err, &se) {
		return se.Type == t
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level matching its category.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var se *ShowcaseError
	if !errors.As(err, &se) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	switch se.Type {
	case ErrorTypeConfig:
		h.logger.Error(ctx, err, "Configuration error",
			"code", se.Code,
			"demo", se.Demo,
			"path", se.Path)
	case ErrorTypeNetwork:
		h.logger.Warn(ctx, err, "Collaborator failure",
			"code", se.Code,
			"demo", se.Demo)
	default:
		h.logger.Error(ctx, err, "Error occurred",
			"type", se.Type,
			"code", se.Code,
			"demo", se.Demo)
	}
}

// Common error codes.
const (
	ErrCodeInvalidPattern      = "ERR_INVALID_PATTERN"
	ErrCodeDeclarationNotFound = "ERR_DECLARATION_NOT_FOUND"
	ErrCodeNoPrimary           = "ERR_NO_PRIMARY"
	ErrCodeEmptySelection      = "ERR_EMPTY_SELECTION"
	ErrCodeUnknownDemo         = "ERR_UNKNOWN_DEMO"
	ErrCodeConfigInvalid       = "ERR_CONFIG_INVALID"
	ErrCodePathCollision       = "ERR_PATH_COLLISION"
	ErrCodeDuplicatePath       = "ERR_DUPLICATE_PATH"
	ErrCodeSourceLoad          = "ERR_SOURCE_LOAD"
	ErrCodeLaunchFailed        = "ERR_LAUNCH_FAILED"
)
