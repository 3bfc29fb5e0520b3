package store

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	rperrors "github.com/repocks/repocks/internal/errors"
)

// Lock acquisition policy. A crashed holder's flock is released by the OS,
// but the staleness budget bounds the wait on a live-but-stuck holder.
const (
	// LockRetries is the maximum number of acquisition attempts.
	LockRetries = 10

	// LockRetryMin is the minimum randomized backoff between attempts.
	LockRetryMin = 100 * time.Millisecond

	// LockRetryMax is the maximum randomized backoff between attempts.
	LockRetryMax = 1 * time.Second

	// LockStaleTimeout is the total acquisition budget.
	LockStaleTimeout = 10 * time.Second
)

// FileLock provides cross-process file locking using gofrs/flock.
// It serializes access to the collection file across repocks processes.
// Works on all platforms (Unix, Linux, macOS, Windows).
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewFileLock creates a new file lock at the given path.
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// Acquire obtains an exclusive lock with bounded retry and randomized
// backoff. Returns a LockTimeoutError if the lock cannot be acquired
// within the retry budget or the staleness timeout.
func (l *FileLock) Acquire(ctx context.Context) error {
	// Ensure directory exists
	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return rperrors.StorageError(fmt.Sprintf("failed to create lock directory %s", dir), err)
	}

	deadline := time.Now().Add(LockStaleTimeout)

	var lastErr error
	for attempt := 1; attempt <= LockRetries; attempt++ {
		select {
		case <-ctx.Done():
			return rperrors.StorageError("lock acquisition interrupted", ctx.Err())
		default:
		}

		acquired, err := l.flock.TryLock()
		if err != nil {
			lastErr = err
		} else if acquired {
			l.locked = true
			return nil
		}

		if attempt == LockRetries || time.Now().After(deadline) {
			break
		}

		backoff := LockRetryMin + time.Duration(rand.Int63n(int64(LockRetryMax-LockRetryMin)))
		select {
		case <-ctx.Done():
			return rperrors.StorageError("lock acquisition interrupted", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return rperrors.LockTimeoutError(l.path, LockRetries, lastErr)
}

// Release releases the file lock.
// It's safe to call Release multiple times or on an unlocked FileLock.
func (l *FileLock) Release() error {
	if !l.locked {
		return nil
	}

	if err := l.flock.Unlock(); err != nil {
		l.locked = false
		return rperrors.StorageError("failed to release lock", err)
	}

	l.locked = false
	return nil
}

// Path returns the path to the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked returns true if the lock is currently held.
func (l *FileLock) IsLocked() bool {
	return l.locked
}
