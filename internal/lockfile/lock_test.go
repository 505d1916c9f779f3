package lockfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testLockName = "suntheme-install.lock"

func TestAcquire(t *testing.T) {
	t.Run("creates lock file", func(t *testing.T) {
		dir := t.TempDir()

		lock, err := Acquire(context.Background(), dir, testLockName)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer lock.Release()

		data, err := os.ReadFile(filepath.Join(dir, testLockName))
		if err != nil {
			t.Fatalf("lock file not created: %v", err)
		}
		if !strings.Contains(string(data), "pid=") {
			t.Errorf("lock file missing pid: %q", data)
		}
		if lock.Path() != filepath.Join(dir, testLockName) {
			t.Errorf("Path() = %q", lock.Path())
		}
	})

	t.Run("prevents concurrent locks", func(t *testing.T) {
		dir := t.TempDir()

		lock1, err := Acquire(context.Background(), dir, testLockName)
		if err != nil {
			t.Fatalf("first Acquire failed: %v", err)
		}
		defer lock1.Release()

		_, err = Acquire(context.Background(), dir, testLockName)
		if !errors.Is(err, ErrLockExists) {
			t.Errorf("expected ErrLockExists, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Acquire(ctx, t.TempDir(), testLockName)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})

	t.Run("creates directory if needed", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "locks")

		lock, err := Acquire(context.Background(), dir, testLockName)
		if err != nil {
			t.Fatalf("Acquire failed: %v", err)
		}
		defer lock.Release()

		if _, err := os.Stat(dir); err != nil {
			t.Errorf("lock directory not created: %v", err)
		}
	})

	t.Run("replaces stale lock", func(t *testing.T) {
		dir := t.TempDir()
		lockPath := filepath.Join(dir, testLockName)
		if err := os.WriteFile(lockPath, []byte("pid=1\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		old := time.Now().Add(-StaleLockThreshold - time.Minute)
		if err := os.Chtimes(lockPath, old, old); err != nil {
			t.Fatal(err)
		}

		lock, err := Acquire(context.Background(), dir, testLockName)
		if err != nil {
			t.Fatalf("Acquire over stale lock failed: %v", err)
		}
		defer lock.Release()
	})
}

func TestLock_Release(t *testing.T) {
	dir := t.TempDir()

	lock, err := Acquire(context.Background(), dir, testLockName)
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, testLockName)); !os.IsNotExist(err) {
		t.Error("lock file should be removed after Release")
	}
	if err := lock.Release(); err != nil {
		t.Errorf("second Release should be a no-op, got %v", err)
	}

	lock2, err := Acquire(context.Background(), dir, testLockName)
	if err != nil {
		t.Fatalf("re-Acquire after Release failed: %v", err)
	}
	lock2.Release()
}
