package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/output"
)

// AliasStatus describes the state of an identity's alias.
type AliasStatus int

const (
	// AliasAbsent means the identity has no alias recorded.
	AliasAbsent AliasStatus = iota
	// AliasResolved means the alias symlink exists and points at the identity.
	AliasResolved
	// AliasStale means a name is recorded but its symlink is missing or
	// points elsewhere.
	AliasStale
)

func (s AliasStatus) String() string {
	switch s {
	case AliasResolved:
		return "resolved"
	case AliasStale:
		return "stale"
	default:
		return "absent"
	}
}

// AliasResult is the outcome of ResolveAlias. Path is the alias symlink when
// Status is AliasResolved and the identity's storage directory otherwise.
type AliasResult struct {
	Status AliasStatus
	Name   string
	Path   string
}

// ValidateName checks that name can be used as an alias.
func ValidateName(name string) error {
	switch {
	case name == "":
		return oerrors.NewValidationError("alias name must not be empty", "", "")
	case name == "." || name == "..":
		return oerrors.NewValidationError(fmt.Sprintf("invalid alias name %q", name), "", "")
	case strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator):
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid alias name %q: must not contain a path separator", name), "", "")
	}
	return nil
}

func (r *Registry) aliasPath(name string) string {
	return filepath.Join(r.namesPath(), name)
}

// SetAlias points name at id, replacing any previous target of name. An
// older alias of id is removed. The identity must already be registered.
func (r *Registry) SetAlias(name, id string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := checkIdentity(id); err != nil {
		return err
	}
	if !r.Exists(id) {
		return notFound(id, r.Path(id))
	}

	unlock, err := r.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(r.namesPath(), 0o755); err != nil {
		return permissionAware(fmt.Errorf("creating alias directory: %w", err), r.namesPath())
	}

	if old := r.AliasName(id); old != "" && old != name {
		if r.linkTarget(old) == id {
			if err := os.Remove(r.aliasPath(old)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return permissionAware(fmt.Errorf("removing alias %s: %w", old, err), r.aliasPath(old))
			}
		}
	}

	if prev := r.linkTarget(name); prev != "" && prev != id && r.AliasName(prev) == name {
		if err := os.Remove(r.nameFilePath(prev)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return permissionAware(fmt.Errorf("clearing alias of %s: %w", prev, err), r.nameFilePath(prev))
		}
	}

	if err := replaceSymlink(r.Path(id), r.aliasPath(name)); err != nil {
		return permissionAware(err, r.aliasPath(name))
	}
	if err := writeFileAtomic(r.nameFilePath(id), []byte(name+"\n"), 0o644); err != nil {
		return permissionAware(err, r.nameFilePath(id))
	}

	output.Debug("set alias", "name", name, "id", id)
	return nil
}

// AliasName returns the alias name recorded for id, or "" when none is.
func (r *Registry) AliasName(id string) string {
	data, err := os.ReadFile(r.nameFilePath(id))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ResolveAlias reports the alias state of id. It never fails: an unreadable
// or dangling alias is reported as stale.
func (r *Registry) ResolveAlias(id string) AliasResult {
	name := r.AliasName(id)
	if name == "" || ValidateName(name) != nil {
		return AliasResult{Status: AliasAbsent, Path: r.Path(id)}
	}
	if r.linkTarget(name) != id {
		return AliasResult{Status: AliasStale, Name: name, Path: r.Path(id)}
	}
	return AliasResult{Status: AliasResolved, Name: name, Path: r.aliasPath(name)}
}

// ResolveName returns the identity an alias name points at. Missing,
// dangling, or foreign symlinks yield errors.ErrNotFound.
func (r *Registry) ResolveName(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	id := r.linkTarget(name)
	if id == "" || !r.Exists(id) {
		return "", oerrors.NewNotFoundError(
			fmt.Sprintf("no environment named %q", name),
			r.aliasPath(name),
			"Set a name with 'devenv build --name'")
	}
	return id, nil
}

// linkTarget returns the identity the alias symlink name points at, or ""
// when the link is missing or does not point into this registry.
func (r *Registry) linkTarget(name string) string {
	link := r.aliasPath(name)
	target, err := os.Readlink(link)
	if err != nil {
		return ""
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(filepath.Dir(link), target)
	}
	target = filepath.Clean(target)

	id := filepath.Base(target)
	if !identity.Valid(id) {
		return ""
	}
	if target == r.Path(id) {
		return id
	}

	// The root may have been reached through a symlink.
	resolved, err := filepath.EvalSymlinks(target)
	if err != nil {
		return ""
	}
	want, err := filepath.EvalSymlinks(r.Path(id))
	if err != nil || resolved != want {
		return ""
	}
	return id
}

// replaceSymlink atomically points link at target.
func replaceSymlink(target, link string) error {
	tmp := filepath.Join(filepath.Dir(link), "."+filepath.Base(link)+".tmp")
	_ = os.Remove(tmp)
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("creating alias link: %w", err)
	}
	if err := os.Rename(tmp, link); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing alias link %s: %w", link, err)
	}
	return nil
}
