// Package lock provides per-workspace advisory locks.
//
// Two invocations racing on the same workspace (one evaluating the gate
// while another archives and deletes) could interleave destructively. A
// flock(2)-based lock around the evaluate-then-reclaim sequence serializes
// them. The lock is advisory: it only guards warden's own invocations.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
)

// WorkspaceLock is an exclusive advisory lock for one workspace, held via
// an open file descriptor. Keep the lock alive by keeping the handle.
type WorkspaceLock struct {
	path  string
	token string
	f     *os.File
}

// Acquire takes an exclusive non-blocking lock for the named workspace in
// lockDir. It fails immediately if another process holds the lock; callers
// treat that as "workspace busy, leave it alone" rather than waiting.
func Acquire(lockDir, name string) (*WorkspaceLock, error) {
	if lockDir == "" || name == "" {
		return nil, fmt.Errorf("lock dir and workspace name are required")
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	path := filepath.Join(lockDir, name+".lock")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("workspace %s is locked by another process: %w", name, err)
	}

	// Record holder identity for post-mortem debugging. The flock is the
	// actual exclusion mechanism; the contents are informational.
	token := uuid.NewString()
	if err := f.Truncate(0); err == nil {
		if _, err := f.Seek(0, 0); err == nil {
			fmt.Fprintf(f, "pid=%d token=%s\n", os.Getpid(), token)
			_ = f.Sync()
		}
	}

	return &WorkspaceLock{path: path, token: token, f: f}, nil
}

// Path returns the lock file path.
func (l *WorkspaceLock) Path() string { return l.path }

// Token returns the holder token written into the lock file.
func (l *WorkspaceLock) Token() string { return l.token }

// Release unlocks and closes the lock file. Safe to call on nil or twice.
func (l *WorkspaceLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	err := l.f.Close()
	l.f = nil
	return err
}
