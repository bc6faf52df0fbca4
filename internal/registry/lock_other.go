//go:build !unix

package registry

import (
	"fmt"
	"os"
)

// lock only ensures the root exists. Without flock the registry is not safe
// for concurrent writers on this platform.
func (r *Registry) lock() (func(), error) {
	if err := os.MkdirAll(r.root, 0o755); err != nil {
		return nil, permissionAware(fmt.Errorf("creating registry root: %w", err), r.root)
	}
	return func() {}, nil
}
