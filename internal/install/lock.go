package install

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
)

// lockFileName is created inside the install directory. It is never removed,
// since deleting it could invalidate a lock concurrently taken by another
// process.
const lockFileName = ".install.lock"

// fileLockRetryInterval is the interval between consecutive attempts to
// acquire the install lock.
const fileLockRetryInterval = 50 * time.Millisecond

// acquireFileLock takes an exclusive lock on lockPath, retrying until it
// succeeds or ctx is done.
func acquireFileLock(ctx context.Context, lockPath string) (*flock.Flock, error) {
	fl := flock.New(lockPath)

	locked, err := fl.TryLockContext(ctx, fileLockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("acquiring file lock %s: %w", lockPath, err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring file lock %s: %w", lockPath, ctx.Err())
		}
		return nil, fmt.Errorf("acquiring file lock %s: lock not acquired", lockPath)
	}

	return fl, nil
}

// releaseFileLock unlocks and closes the lock file descriptor. Failures are
// logged at debug level only.
func releaseFileLock(logger *slog.Logger, fl *flock.Flock) {
	if fl != nil {
		if err := fl.Close(); err != nil {
			logger.Debug("failed to release install lock", "path", fl.Path(), "err", err)
		}
	}
}
