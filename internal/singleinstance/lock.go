// Package singleinstance enforces that only one hypr-layoutd process owns
// the control socket and the compositor IPC connections at a time. It is
// implemented with an advisory flock on a well-known lock file; the
// kernel releases the lock automatically when the owning process dies,
// so a crashed daemon never leaves a stale lock behind.
package singleinstance

import (
	"errors"
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// ErrAlreadyRunning is returned by TryLock when another instance holds the lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock holds an open, flock'd file descriptor for the lifetime of the process.
type Lock struct {
	file *os.File
}

// DefaultLockPath returns the default lock file path under XDG_RUNTIME_DIR,
// falling back to os.TempDir() when unset.
func DefaultLockPath() string {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return dir + "/hypr-layoutd.lock"
}

// TryLock attempts to acquire an exclusive, non-blocking advisory lock on
// path. Returns ErrAlreadyRunning if another process already holds it.
func TryLock(path string) (*Lock, error) {
	if path == "" {
		path = DefaultLockPath()
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrAlreadyRunning
		}
		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &Lock{file: f}, nil
}

// Release drops the lock and closes the underlying file. Safe on a nil
// receiver and idempotent.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return closeErr
}
