package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rperrors "github.com/repocks/repocks/internal/errors"
)

func TestFileLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.lock")
	lock := NewFileLock(path)

	require.NoError(t, lock.Acquire(context.Background()))
	assert.True(t, lock.IsLocked())
	assert.Equal(t, path, lock.Path())

	require.NoError(t, lock.Release())
	assert.False(t, lock.IsLocked())
}

func TestFileLock_ReleaseIdempotent(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "store.lock"))

	// Release without acquire is a no-op
	require.NoError(t, lock.Release())

	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release())
}

func TestFileLock_Reacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.lock")
	lock := NewFileLock(path)

	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())

	// Released locks can be taken again
	require.NoError(t, lock.Acquire(context.Background()))
	require.NoError(t, lock.Release())
}

func TestFileLock_CancelledContext(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "store.lock"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := lock.Acquire(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, rperrors.ErrCodeStorage, rperrors.GetCode(err))
	assert.False(t, lock.IsLocked())
}
