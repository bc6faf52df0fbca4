package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/output"
)

// Put writes cfg as the configuration document of id, creating the
// identity's storage directory when needed. The id field is never stored.
func (r *Registry) Put(id string, cfg *environment.Configuration) error {
	if err := checkIdentity(id); err != nil {
		return err
	}

	data, err := encodeDocument(id, cfg)
	if err != nil {
		return err
	}

	unlock, err := r.lock()
	if err != nil {
		return err
	}
	defer unlock()

	return r.writeDocument(id, data)
}

// Create mints a fresh identity for dir and stores cfg under it. Minting and
// writing happen under one lock, so concurrent builds from the same
// directory never receive the same identity.
func (r *Registry) Create(dir string, cfg *environment.Configuration) (string, error) {
	unlock, err := r.lock()
	if err != nil {
		return "", err
	}
	defer unlock()

	id, err := identity.Mint(dir, r.Exists)
	if err != nil {
		return "", err
	}
	data, err := encodeDocument(id, cfg)
	if err != nil {
		return "", err
	}
	if err := r.writeDocument(id, data); err != nil {
		return "", err
	}
	return id, nil
}

func encodeDocument(id string, cfg *environment.Configuration) ([]byte, error) {
	data, err := json.MarshalIndent(cfg.Stored(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding configuration for %s: %w", id, err)
	}
	return append(data, '\n'), nil
}

// writeDocument stores an encoded document. The caller holds the lock.
func (r *Registry) writeDocument(id string, data []byte) error {
	if err := os.MkdirAll(r.Path(id), 0o755); err != nil {
		return permissionAware(fmt.Errorf("creating environment directory: %w", err), r.Path(id))
	}
	if err := writeFileAtomic(r.configPath(id), data, 0o644); err != nil {
		return permissionAware(err, r.configPath(id))
	}

	output.Debug("stored environment configuration", "id", id, "path", r.configPath(id))
	return nil
}

// Get reads the configuration document of id and injects the identity.
// A missing document yields errors.ErrNotFound; an unparseable one
// errors.ErrCorrupt.
func (r *Registry) Get(id string) (*environment.Configuration, error) {
	data, err := r.RawDocument(id)
	if err != nil {
		return nil, err
	}

	var cfg environment.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", oerrors.ErrCorrupt, r.configPath(id), err)
	}
	cfg.Normalize()
	cfg.ID = id
	return &cfg, nil
}

// Exists reports whether id has a storage directory. A directory without a
// document still counts, so minting never hands out an identity whose
// directory the backend is materializing.
func (r *Registry) Exists(id string) bool {
	info, err := os.Stat(r.Path(id))
	return err == nil && info.IsDir()
}

// IDs returns the sorted identities that have a storage directory.
// A missing root yields an empty list.
func (r *Registry) IDs() ([]string, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, permissionAware(fmt.Errorf("reading registry root: %w", err), r.root)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && identity.Valid(e.Name()) {
			ids = append(ids, e.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// GetAll loads every registered configuration, keyed by identity.
//
// Entries without a readable or parseable document are skipped and logged
// at debug level: they are either still being materialized, removed
// concurrently, or corrupt, and none of those should hide the rest of the
// registry.
func (r *Registry) GetAll() (map[string]*environment.Configuration, error) {
	ids, err := r.IDs()
	if err != nil {
		return nil, err
	}
	return r.load(ids), nil
}

// GetMany loads the given identities, skipping missing or corrupt entries
// the same way GetAll does.
func (r *Registry) GetMany(ids []string) map[string]*environment.Configuration {
	return r.load(ids)
}

func (r *Registry) load(ids []string) map[string]*environment.Configuration {
	out := make(map[string]*environment.Configuration, len(ids))
	for _, id := range ids {
		cfg, err := r.Get(id)
		if err != nil {
			output.Debug("skipping registry entry", "id", id, "error", err)
			continue
		}
		out[id] = cfg
	}
	return out
}

// Remove deletes the storage directory of id, the alias pointing at it, and
// the id's directory index entries. Index files themselves are kept.
// Removing an unknown identity is not an error.
func (r *Registry) Remove(id string) error {
	if err := checkIdentity(id); err != nil {
		return err
	}
	if !r.exists() {
		return nil
	}

	unlock, err := r.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if res := r.ResolveAlias(id); res.Status == AliasResolved {
		if err := os.Remove(res.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return permissionAware(fmt.Errorf("removing alias %s: %w", res.Path, err), res.Path)
		}
	}

	if err := os.RemoveAll(r.Path(id)); err != nil {
		return permissionAware(fmt.Errorf("removing environment %s: %w", id, err), r.Path(id))
	}

	if err := r.pruneIndex(id); err != nil {
		return err
	}

	output.Debug("removed environment", "id", id)
	return nil
}

// RawDocument returns the stored configuration document of id as written on
// disk, for schema validation.
func (r *Registry) RawDocument(id string) ([]byte, error) {
	if !identity.Valid(id) {
		return nil, notFound(id, r.root)
	}
	path := r.configPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, notFound(id, r.Path(id))
		}
		return nil, permissionAware(fmt.Errorf("reading %s: %w", path, err), path)
	}
	return data, nil
}

// DocumentPath returns the path of id's configuration document.
func (r *Registry) DocumentPath(id string) string {
	return r.configPath(id)
}
