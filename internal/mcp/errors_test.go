package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	rperrors "github.com/repocks/repocks/internal/errors"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "lock timeout",
			err:      rperrors.LockTimeoutError("/tmp/store.lock", 10, nil),
			wantCode: ErrCodeCollectionLocked,
		},
		{
			name:     "embedding failure",
			err:      rperrors.EmbeddingError("provider down", nil),
			wantCode: ErrCodeEmbeddingFailed,
		},
		{
			name:     "validation failure",
			err:      rperrors.DimensionMismatchError(1024, 512),
			wantCode: ErrCodeInvalidParams,
		},
		{
			name:     "storage failure",
			err:      rperrors.StorageError("disk exploded", nil),
			wantCode: ErrCodeInternalError,
		},
		{
			name:     "deadline",
			err:      context.DeadlineExceeded,
			wantCode: ErrCodeTimeout,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			wantCode: ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.NotEmpty(t, got.Message)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, MapError(nil))
}

func TestMapError_IncludesSuggestion(t *testing.T) {
	err := rperrors.LockTimeoutError("/tmp/store.lock", 10, nil)
	got := MapError(err)
	assert.Contains(t, got.Message, "another repocks process")
}
