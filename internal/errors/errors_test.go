package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepocksError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with RepocksError
	repErr := New(ErrCodeSourceRead, "failed to read docs/a.md", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, repErr)
	assert.Equal(t, originalErr, errors.Unwrap(repErr))
	assert.True(t, errors.Is(repErr, originalErr))
}

func TestRepocksError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "source read error",
			code:     ErrCodeSourceRead,
			message:  "docs/a.md vanished",
			expected: "[ERR_201_SOURCE_READ] docs/a.md vanished",
		},
		{
			name:     "embedding error",
			code:     ErrCodeEmbeddingFailed,
			message:  "provider returned 500",
			expected: "[ERR_301_EMBEDDING_FAILED] provider returned 500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestRepocksError_Is_MatchesByCode(t *testing.T) {
	err1 := New(ErrCodeStorage, "upsert failed", nil)
	err2 := New(ErrCodeStorage, "delete failed", nil)

	assert.True(t, errors.Is(err1, err2))
}

func TestRepocksError_Is_DoesNotMatchDifferentCodes(t *testing.T) {
	err1 := New(ErrCodeStorage, "upsert failed", nil)
	err2 := New(ErrCodeLockTimeout, "lock timed out", nil)

	assert.False(t, errors.Is(err1, err2))
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeSourceRead, CategoryIO},
		{ErrCodeEmbeddingFailed, CategoryEmbedding},
		{ErrCodeDimensionMismatch, CategoryValidation},
		{ErrCodeStorage, CategoryStorage},
		{ErrCodeLockTimeout, CategoryStorage},
		{"garbage", CategoryStorage},
		{"ERR", CategoryStorage},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.category, categoryFromCode(tt.code))
		})
	}
}

func TestLockTimeoutError_IsFatal(t *testing.T) {
	err := LockTimeoutError("/tmp/.repocks/store.lock", 10, nil)

	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrCodeLockTimeout, GetCode(err))
	assert.Equal(t, "/tmp/.repocks/store.lock", err.Details["lock_path"])
	assert.NotEmpty(t, err.Suggestion)
}

func TestSourceReadError_CarriesPath(t *testing.T) {
	cause := errors.New("permission denied")
	err := SourceReadError("docs/guide.md", cause)

	assert.Equal(t, ErrCodeSourceRead, GetCode(err))
	assert.Equal(t, "docs/guide.md", err.Details["path"])
	assert.Contains(t, err.Error(), "docs/guide.md")
	assert.True(t, errors.Is(err, cause))
}

func TestDimensionMismatchError(t *testing.T) {
	err := DimensionMismatchError(1024, 768)

	assert.Equal(t, ErrCodeDimensionMismatch, GetCode(err))
	assert.Equal(t, CategoryValidation, GetCategory(err))
	assert.Contains(t, err.Error(), "expected 1024, got 768")
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrCodeEmbeddingUnavailable, "connection refused", nil)))
	assert.False(t, IsRetryable(New(ErrCodeEmbeddingFailed, "bad response", nil)))
	assert.False(t, IsRetryable(errors.New("plain error")))
	assert.False(t, IsRetryable(nil))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeStorage, nil))
}
