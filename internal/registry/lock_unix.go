//go:build unix

package registry

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// lock takes an exclusive advisory lock on the registry. The returned
// function releases it. Locks are per open file, so the registry must not
// call lock while already holding it.
func (r *Registry) lock() (func(), error) {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return nil, permissionAware(fmt.Errorf("creating registry root: %w", err), r.root)
	}

	path := filepath.Join(r.root, lockFileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, permissionAware(fmt.Errorf("opening lock file: %w", err), path)
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}

	return func() {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		_ = f.Close()
	}, nil
}
