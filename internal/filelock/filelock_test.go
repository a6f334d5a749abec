package filelock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

// holdLock acquires the lock at path for the rest of the test
func holdLock(t *testing.T, path string) *FileLock {
	t.Helper()
	lock := NewFileLock(path)
	if err := lock.LockContext(context.Background()); err != nil {
		t.Fatalf("failed to acquire holder lock: %v", err)
	}
	return lock
}

func TestNewFileLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "report.md.lock")

	lock := NewFileLock(lockPath)
	if lock == nil {
		t.Fatal("NewFileLock should not return nil")
	}
	if lock.path != lockPath {
		t.Errorf("Expected lock path %s, got %s", lockPath, lock.path)
	}
}

func TestLockUnlock(t *testing.T) {
	lock := holdLock(t, filepath.Join(t.TempDir(), "test.lock"))
	if err := lock.Unlock(); err != nil {
		t.Fatalf("Failed to release lock: %v", err)
	}
}

func TestLockContextWaitsForRelease(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := holdLock(t, lockPath)

	released := make(chan struct{})
	go func() {
		time.Sleep(100 * time.Millisecond)
		holder.Unlock()
		close(released)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	contender := NewFileLock(lockPath)
	start := time.Now()
	if err := contender.LockContext(ctx); err != nil {
		t.Fatalf("LockContext should succeed: %v", err)
	}
	if wait := time.Since(start); wait < 90*time.Millisecond {
		t.Fatalf("expected to wait for lock, waited only %v", wait)
	}
	contender.Unlock()

	<-released
}

func TestLockContextTimeout(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := holdLock(t, lockPath)
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := NewFileLock(lockPath).LockContext(ctx)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

func TestAtomicWrite(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		content  string
	}{
		{name: "new file", content: "a.txt\n0: hello world\n"},
		{name: "overwrite", existing: "old report\n", content: "new report\n"},
		{name: "empty report", existing: "old\n", content: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := filepath.Join(t.TempDir(), "report.txt")
			if tt.existing != "" {
				if err := os.WriteFile(target, []byte(tt.existing), 0600); err != nil {
					t.Fatal(err)
				}
			}

			if err := AtomicWrite(target, []byte(tt.content), 0644); err != nil {
				t.Fatalf("AtomicWrite failed: %v", err)
			}

			data, err := os.ReadFile(target)
			if err != nil {
				t.Fatalf("Failed to read target: %v", err)
			}
			if string(data) != tt.content {
				t.Errorf("Expected %q, got %q", tt.content, string(data))
			}

			info, err := os.Stat(target)
			if err != nil {
				t.Fatal(err)
			}
			if info.Mode().Perm() != 0644 {
				t.Errorf("Expected permissions 0644, got %o", info.Mode().Perm())
			}
		})
	}
}

func TestAtomicWriteNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "report.html")

	if err := AtomicWrite(target, []byte("<p>x</p>"), 0644); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}

func TestAtomicWriteCreateDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "exports", "nested", "report.md")

	if err := AtomicWrite(target, []byte("# report"), 0644); err != nil {
		t.Fatalf("AtomicWrite failed: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("Expected target to exist: %v", err)
	}
}

func TestAtomicWriteTargetIsDirectory(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "occupied")
	if err := os.Mkdir(target, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(target, "child"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := AtomicWrite(target, []byte("data"), 0644); err == nil {
		t.Fatal("Expected error when target is a non-empty directory")
	}
}

func TestLockAndWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "out", "report.txt")

	if err := LockAndWrite(context.Background(), target, []byte("report")); err != nil {
		t.Fatalf("LockAndWrite failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "report" {
		t.Errorf("Expected %q, got %q", "report", string(data))
	}
}

func TestLockAndWriteCancelled(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.txt")

	holder := holdLock(t, target+".lock")
	defer holder.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := LockAndWrite(ctx, target, []byte("x")); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Error("target must not be written without the lock")
	}
}

func TestConcurrentLockAndWrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "report.txt")

	const goroutines = 10
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			content := []byte(fmt.Sprintf("report-%d", id))
			if err := LockAndWrite(context.Background(), target, content); err != nil {
				t.Errorf("LockAndWrite failed for goroutine %d: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "report-") {
		t.Errorf("Expected a complete report, got %q", string(data))
	}
}
