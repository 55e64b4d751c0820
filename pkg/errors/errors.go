// Package errors provides the structured error system for postalkit with
// error codes, categories, and retry hints.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode identifies a specific failure mode.
type ErrorCode string

const (
	// Initialization errors
	ErrCodeInitFailed   ErrorCode = "INIT_FAILED"
	ErrCodeInitRejected ErrorCode = "INIT_REJECTED"

	// Data management errors
	ErrCodeDataMissing          ErrorCode = "DATA_MISSING"
	ErrCodeDataCorrupt          ErrorCode = "DATA_CORRUPT"
	ErrCodeDataDownloadDisabled ErrorCode = "DATA_DOWNLOAD_DISABLED"
	ErrCodeDataSourceExhausted  ErrorCode = "DATA_SOURCE_EXHAUSTED"

	// Native boundary errors
	ErrCodeParseFailed     ErrorCode = "PARSE_FAILED"
	ErrCodeNormalizeFailed ErrorCode = "NORMALIZE_FAILED"
	ErrCodeBoundaryNulByte ErrorCode = "BOUNDARY_NUL_BYTE"

	// Transport errors
	ErrCodeNetworkError   ErrorCode = "NETWORK_ERROR"
	ErrCodeNetworkStatus  ErrorCode = "NETWORK_STATUS"
	ErrCodeRetryExhausted ErrorCode = "RETRY_EXHAUSTED"

	// Filesystem errors
	ErrCodeIOError ErrorCode = "IO_ERROR"
)

// ErrorCategory groups error codes by the subsystem they originate from.
type ErrorCategory string

const (
	CategoryInitialization ErrorCategory = "initialization"
	CategoryData           ErrorCategory = "data"
	CategoryBoundary       ErrorCategory = "boundary"
	CategoryNetwork        ErrorCategory = "network"
	CategoryIO             ErrorCategory = "io"
)

// PostalError is the structured error returned by all postalkit operations.
type PostalError struct {
	Code      ErrorCode         `json:"code"`
	Category  ErrorCategory     `json:"category"`
	Message   string            `json:"message"`
	Context   map[string]string `json:"context,omitempty"`
	Cause     error             `json:"-"`
	Timestamp time.Time         `json:"timestamp"`

	// Component and Operation locate the failure: "ffi", "data", "parser", ...
	Component string `json:"component,omitempty"`
	Operation string `json:"operation,omitempty"`

	// Retryable marks transient failures worth another attempt.
	Retryable bool `json:"retryable"`
}

// Error implements the error interface.
func (e *PostalError) Error() string {
	if e.Component != "" {
		if e.Operation != "" {
			return fmt.Sprintf("[%s:%s] %s: %s", e.Component, e.Operation, e.Code, e.Message)
		}
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *PostalError) Unwrap() error {
	return e.Cause
}

// Is matches two PostalErrors by code.
func (e *PostalError) Is(target error) bool {
	if pe, ok := target.(*PostalError); ok {
		return e.Code == pe.Code
	}
	return false
}

// String returns a detailed representation for logging.
func (e *PostalError) String() string {
	parts := []string{
		fmt.Sprintf("Code=%s", e.Code),
		fmt.Sprintf("Category=%s", e.Category),
		fmt.Sprintf("Message=%q", e.Message),
	}
	if e.Component != "" {
		parts = append(parts, fmt.Sprintf("Component=%s", e.Component))
	}
	if e.Operation != "" {
		parts = append(parts, fmt.Sprintf("Operation=%s", e.Operation))
	}
	if e.Retryable {
		parts = append(parts, "Retryable=true")
	}
	for k, v := range e.Context {
		parts = append(parts, fmt.Sprintf("%s=%q", k, v))
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("Cause=%q", e.Cause.Error()))
	}
	return fmt.Sprintf("PostalError{%s}", strings.Join(parts, ", "))
}

// New creates a new PostalError with category and retry defaults derived
// from the code.
func New(code ErrorCode, message string) *PostalError {
	return &PostalError{
		Code:      code,
		Category:  GetCategory(code),
		Message:   message,
		Timestamp: time.Now(),
		Retryable: IsRetryableByDefault(code),
	}
}

// Newf creates a new PostalError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *PostalError {
	return New(code, fmt.Sprintf(format, args...))
}

// GetCategory determines the category for an error code.
func GetCategory(code ErrorCode) ErrorCategory {
	s := string(code)
	switch {
	case strings.HasPrefix(s, "INIT_"):
		return CategoryInitialization
	case strings.HasPrefix(s, "DATA_"):
		return CategoryData
	case strings.HasPrefix(s, "PARSE_") || strings.HasPrefix(s, "NORMALIZE_") ||
		strings.HasPrefix(s, "BOUNDARY_"):
		return CategoryBoundary
	case strings.HasPrefix(s, "NETWORK_") || strings.HasPrefix(s, "RETRY_"):
		return CategoryNetwork
	default:
		return CategoryIO
	}
}

// IsRetryableByDefault reports whether a code represents a transient failure.
func IsRetryableByDefault(code ErrorCode) bool {
	switch code {
	case ErrCodeNetworkError, ErrCodeNetworkStatus:
		return true
	}
	return false
}

// WithContext adds a key/value pair locating the failure.
func (e *PostalError) WithContext(key, value string) *PostalError {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

// WithComponent sets the component for an error.
func (e *PostalError) WithComponent(component string) *PostalError {
	e.Component = component
	return e
}

// WithOperation sets the operation for an error.
func (e *PostalError) WithOperation(operation string) *PostalError {
	e.Operation = operation
	return e
}

// WithCause attaches the underlying error.
func (e *PostalError) WithCause(cause error) *PostalError {
	e.Cause = cause
	return e
}

// WithRetryable overrides the default retry hint.
func (e *PostalError) WithRetryable(retryable bool) *PostalError {
	e.Retryable = retryable
	return e
}
