// Package outputlock keeps two renders from writing the same frame files at
// the same time.
package outputlock

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another render holds the lock for the same prefix.
var ErrLocked = errors.New("another render is writing to this output prefix")

// Lock is an exclusive advisory lock on one output prefix.
type Lock struct {
	path string
	lock *flock.Flock
}

// PathFor returns the lock file used for prefix. The file lives next to the
// frames: "<dir>/.<base>.lock", or "<dir>/.mandelmovie.lock" when prefix names a
// directory.
func PathFor(prefix string) string {
	dir, base := filepath.Split(prefix)
	if dir == "" {
		dir = "."
	}
	base = strings.TrimSpace(base)
	if base == "" {
		base = "mandelmovie"
	}
	return filepath.Join(dir, "."+base+".lock")
}

// Acquire takes the lock for prefix without blocking. The output directory
// must already exist.
func Acquire(prefix string) (*Lock, error) {
	path := PathFor(prefix)
	l := &Lock{path: path, lock: flock.New(path)}
	ok, err := l.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrLocked, path)
	}
	return l, nil
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release drops the lock. The lock file is left in place.
func (l *Lock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release output lock %s: %w", l.path, err)
	}
	return nil
}
