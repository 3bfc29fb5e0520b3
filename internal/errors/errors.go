package errors

import (
	"fmt"
)

// RepocksError is the structured error type for repocks.
// It provides rich context for error handling, logging, and user presentation.
type RepocksError struct {
	// Code is the unique error code (e.g., "ERR_201_SOURCE_READ").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, IO, Embedding, etc.).
	Category Category

	// Severity is the error severity level.
	Severity Severity

	// Details contains additional context as key-value pairs.
	Details map[string]string

	// Cause is the underlying error that caused this error.
	Cause error

	// Retryable indicates if the operation can be retried.
	Retryable bool

	// Suggestion is an actionable suggestion for the user.
	Suggestion string
}

// Error implements the error interface.
func (e *RepocksError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *RepocksError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
// This enables errors.Is() to work with RepocksError.
func (e *RepocksError) Is(target error) bool {
	if t, ok := target.(*RepocksError); ok {
		return e.Code == t.Code
	}
	return false
}

// WithDetail adds a key-value detail to the error.
// Returns the error for method chaining.
func (e *RepocksError) WithDetail(key, value string) *RepocksError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithSuggestion adds an actionable suggestion for the user.
// Returns the error for method chaining.
func (e *RepocksError) WithSuggestion(suggestion string) *RepocksError {
	e.Suggestion = suggestion
	return e
}

// New creates a new RepocksError with the given code and message.
// Category, severity, and retryable flag are derived from the code.
func New(code string, message string, cause error) *RepocksError {
	return &RepocksError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Severity:  severityFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a RepocksError from an existing error.
// The error's message becomes the RepocksError message.
func Wrap(code string, err error) *RepocksError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// ConfigError creates a configuration-related error.
func ConfigError(message string, cause error) *RepocksError {
	return New(ErrCodeConfigInvalid, message, cause)
}

// SourceReadError creates an error for a target file that vanished or became
// unreadable between globbing and reading. Fatal to the current sync pass.
func SourceReadError(path string, cause error) *RepocksError {
	return New(ErrCodeSourceRead, fmt.Sprintf("failed to read source file %s", path), cause).
		WithDetail("path", path)
}

// EmbeddingError creates an embedding provider error.
func EmbeddingError(message string, cause error) *RepocksError {
	return New(ErrCodeEmbeddingFailed, message, cause)
}

// StorageError creates a collection storage error.
func StorageError(message string, cause error) *RepocksError {
	return New(ErrCodeStorage, message, cause)
}

// LockTimeoutError creates an error for a lock not acquired within the retry budget.
func LockTimeoutError(lockPath string, attempts int, cause error) *RepocksError {
	return New(ErrCodeLockTimeout,
		fmt.Sprintf("could not acquire collection lock after %d attempts", attempts), cause).
		WithDetail("lock_path", lockPath).
		WithSuggestion("another repocks process may be indexing; retry, or remove the lock file if no process is running")
}

// DimensionMismatchError creates a validation error for a vector whose length
// differs from the collection's fixed dimension.
func DimensionMismatchError(expected, got int) *RepocksError {
	return New(ErrCodeDimensionMismatch,
		fmt.Sprintf("dimension mismatch: expected %d, got %d", expected, got), nil)
}

// ValidationError creates an input validation error.
func ValidationError(message string, cause error) *RepocksError {
	return New(ErrCodeInvalidInput, message, cause)
}

// IsRetryable checks if an error is retryable.
// Returns true if the error is a RepocksError with Retryable flag set.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RepocksError); ok {
		return re.Retryable
	}
	return false
}

// IsFatal checks if an error has fatal severity.
// Fatal errors should abort the current operation.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if re, ok := err.(*RepocksError); ok {
		return re.Severity == SeverityFatal
	}
	return false
}

// GetCode extracts the error code from a RepocksError.
// Returns empty string if not a RepocksError.
func GetCode(err error) string {
	if re, ok := err.(*RepocksError); ok {
		return re.Code
	}
	return ""
}

// GetCategory extracts the category from a RepocksError.
// Returns empty string if not a RepocksError.
func GetCategory(err error) Category {
	if re, ok := err.(*RepocksError); ok {
		return re.Category
	}
	return ""
}
