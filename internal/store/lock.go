package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrAlreadyRunning means another process holds the instance lock
var ErrAlreadyRunning = errors.New("another scheduler instance is already running")

// InstanceLock keeps two unattended schedulers from driving the same machine
type InstanceLock struct {
	lock *flock.Flock
}

// LockPathFor returns the lock file that sits next to a config file
func LockPathFor(configPath string) string {
	return filepath.Join(filepath.Dir(configPath), "."+filepath.Base(configPath)+".lock")
}

// AcquireInstanceLock takes the lock without blocking
func AcquireInstanceLock(path string) (*InstanceLock, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create lock directory: %w", err)
		}
	}

	fileLock := flock.New(path)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, ErrAlreadyRunning
	}

	return &InstanceLock{lock: fileLock}, nil
}

// Release unlocks and closes the lock file
func (l *InstanceLock) Release() error {
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return nil
}
