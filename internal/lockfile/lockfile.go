// Package lockfile guards mutating commands with an advisory file lock so
// two invocations never race on the state database.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld is returned when another process already holds the lock.
var ErrHeld = errors.New("another podscribe instance is already running")

// Lock is a held advisory lock.
type Lock struct {
	flk *flock.Flock
}

// Acquire takes the lock at path without blocking. Callers must Release.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	flk := flock.New(path)
	ok, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrHeld
	}
	return &Lock{flk: flk}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	if l == nil || l.flk == nil {
		return nil
	}
	return l.flk.Unlock()
}
