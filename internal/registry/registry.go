// Package registry persists environment configuration documents on disk and
// indexes them by source directory and alias name.
//
// Layout under the root directory:
//
//	<root>/<id>/config.json   configuration document (without "id")
//	<root>/<id>/name          optional alias name
//	<root>/dirs/<key>         newline-delimited identities built from a directory
//	<root>/names/<name>       symlink to <root>/<id>
//	<root>/.lock              advisory lock for writers
//
// Mutations take an exclusive advisory lock on unix platforms. Reads are
// unlocked and skip entries that vanish while they run.
package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/identity"
)

const (
	configFileName = "config.json"
	nameFileName   = "name"
	dirsDirName    = "dirs"
	namesDirName   = "names"
	lockFileName   = ".lock"
)

// Registry is a handle on one registry root directory. It is constructed
// once per process and passed to every operation that needs it.
type Registry struct {
	root string
}

// New returns a Registry rooted at root. The directory is created lazily on
// the first write.
func New(root string) *Registry {
	return &Registry{root: filepath.Clean(root)}
}

// Root returns the registry root directory.
func (r *Registry) Root() string {
	return r.root
}

// Path returns the storage directory of an identity.
func (r *Registry) Path(id string) string {
	return filepath.Join(r.root, id)
}

func (r *Registry) configPath(id string) string {
	return filepath.Join(r.root, id, configFileName)
}

func (r *Registry) nameFilePath(id string) string {
	return filepath.Join(r.root, id, nameFileName)
}

func (r *Registry) dirsPath() string {
	return filepath.Join(r.root, dirsDirName)
}

func (r *Registry) namesPath() string {
	return filepath.Join(r.root, namesDirName)
}

// exists reports whether the registry root exists.
func (r *Registry) exists() bool {
	info, err := os.Stat(r.root)
	return err == nil && info.IsDir()
}

func checkIdentity(id string) error {
	if !identity.Valid(id) {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid identity %q: expected %d lowercase hex characters", id, identity.Length),
			"", "")
	}
	return nil
}

func notFound(id, location string) error {
	return oerrors.NewNotFoundError(
		fmt.Sprintf("no environment registered with identity %s", id),
		location,
		"Run 'devenv list --all' to see registered environments")
}

// writeFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partially written document.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("setting permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("renaming into %s: %w", path, err)
	}
	return nil
}

// permissionAware converts filesystem permission failures into ErrPermission.
func permissionAware(err error, path string) error {
	if errors.Is(err, fs.ErrPermission) {
		return oerrors.NewPermissionError(err.Error(),
			map[string]string{"Path": path},
			"Check ownership of the registry directory or set registryDir in the config file")
	}
	return err
}
