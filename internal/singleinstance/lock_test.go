package singleinstance

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestTryLock_SecondCallerRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	first, err := TryLock(path)
	if err != nil {
		t.Fatalf("first TryLock: %v", err)
	}
	defer first.Release()

	_, err = TryLock(path)
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestTryLock_ReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	first, err := TryLock(path)
	if err != nil {
		t.Fatalf("first TryLock: %v", err)
	}
	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	second, err := TryLock(path)
	if err != nil {
		t.Fatalf("second TryLock after release: %v", err)
	}
	defer second.Release()
}

func TestLock_ReleaseNilSafe(t *testing.T) {
	var l *Lock
	if err := l.Release(); err != nil {
		t.Fatalf("nil release should be a no-op, got %v", err)
	}
}
