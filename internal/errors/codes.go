// Package errors provides structured error handling for repocks.
//
// Error codes follow the pattern ERR_XXX_DESCRIPTION where:
//   - 1XX: Configuration errors
//   - 2XX: Source file IO errors
//   - 3XX: Embedding provider errors
//   - 4XX: Validation errors
//   - 5XX: Storage and internal errors
package errors

// Category defines error categories for classification.
type Category string

const (
	// CategoryConfig indicates configuration-related errors.
	CategoryConfig Category = "CONFIG"
	// CategoryIO indicates source file and disk I/O errors.
	CategoryIO Category = "IO"
	// CategoryEmbedding indicates embedding provider errors.
	CategoryEmbedding Category = "EMBEDDING"
	// CategoryValidation indicates input validation errors.
	CategoryValidation Category = "VALIDATION"
	// CategoryStorage indicates collection storage and locking errors.
	CategoryStorage Category = "STORAGE"
)

// Severity defines error severity levels.
type Severity string

const (
	// SeverityFatal indicates unrecoverable error, must abort.
	SeverityFatal Severity = "FATAL"
	// SeverityError indicates operation failed but can continue.
	SeverityError Severity = "ERROR"
	// SeverityWarning indicates degraded operation, continuing.
	SeverityWarning Severity = "WARNING"
)

// Error codes organized by category.
const (
	// Config errors (100-199)
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	// Source IO errors (200-299)
	ErrCodeSourceRead     = "ERR_201_SOURCE_READ"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeDiskFull       = "ERR_203_DISK_FULL"

	// Embedding provider errors (300-399)
	ErrCodeEmbeddingFailed      = "ERR_301_EMBEDDING_FAILED"
	ErrCodeEmbeddingUnavailable = "ERR_302_EMBEDDING_UNAVAILABLE"
	ErrCodeEmbeddingMismatch    = "ERR_303_EMBEDDING_MISMATCH"

	// Validation errors (400-499)
	ErrCodeInvalidInput      = "ERR_401_INVALID_INPUT"
	ErrCodeDimensionMismatch = "ERR_402_DIMENSION_MISMATCH"
	ErrCodeQueryEmpty        = "ERR_403_QUERY_EMPTY"

	// Storage errors (500-599)
	ErrCodeStorage     = "ERR_501_STORAGE"
	ErrCodeLockTimeout = "ERR_502_LOCK_TIMEOUT"
	ErrCodeInternal    = "ERR_503_INTERNAL"
)

// categoryFromCode extracts category from error code.
func categoryFromCode(code string) Category {
	if len(code) < 7 {
		return CategoryStorage
	}

	// Extract numeric portion (e.g., "201" from "ERR_201_SOURCE_READ")
	switch code[4] {
	case '1':
		return CategoryConfig
	case '2':
		return CategoryIO
	case '3':
		return CategoryEmbedding
	case '4':
		return CategoryValidation
	default:
		return CategoryStorage
	}
}

// severityFromCode determines severity based on error code.
func severityFromCode(code string) Severity {
	// Fatal errors abort the whole operation
	switch code {
	case ErrCodeDiskFull, ErrCodeLockTimeout:
		return SeverityFatal
	}

	// Retryable provider errors get warning severity
	if isRetryableCode(code) {
		return SeverityWarning
	}

	return SeverityError
}

// isRetryableCode checks if an error code represents a retryable error.
func isRetryableCode(code string) bool {
	return code == ErrCodeEmbeddingUnavailable
}
