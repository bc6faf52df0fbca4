package registry

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/output"
)

// indexPath returns the index file of dir, keyed by the identity of its
// canonical form.
func (r *Registry) indexPath(dir string) (string, error) {
	canonical, err := identity.Canonical(dir)
	if err != nil {
		return "", err
	}
	return filepath.Join(r.dirsPath(), identity.Of(canonical)), nil
}

// RegisterDirectory records that id was built from dir. The index keeps one
// line per identity, oldest first; registering an identity that is already
// present moves it to the end.
func (r *Registry) RegisterDirectory(dir, id string) error {
	if err := checkIdentity(id); err != nil {
		return err
	}

	path, err := r.indexPath(dir)
	if err != nil {
		return err
	}

	unlock, err := r.lock()
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(r.dirsPath(), 0o755); err != nil {
		return permissionAware(fmt.Errorf("creating directory index: %w", err), r.dirsPath())
	}

	ids, err := readIndexFile(path)
	if err != nil {
		return err
	}

	ids = appendMoved(ids, id)
	if err := writeFileAtomic(path, encodeIndex(ids), 0o644); err != nil {
		return permissionAware(err, path)
	}

	output.Debug("registered directory", "dir", dir, "id", id, "entries", len(ids))
	return nil
}

// LookupByDirectory returns the identities built from dir, oldest first.
// A missing registry or index file yields an empty list.
func (r *Registry) LookupByDirectory(dir string) ([]string, error) {
	path, err := r.indexPath(dir)
	if err != nil {
		return nil, err
	}
	return readIndexFile(path)
}

// Indexed reports whether any directory index lists id.
func (r *Registry) Indexed(id string) (bool, error) {
	entries, err := os.ReadDir(r.dirsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, permissionAware(fmt.Errorf("reading directory index: %w", err), r.dirsPath())
	}

	for _, e := range entries {
		if e.IsDir() || !identity.Valid(e.Name()) {
			continue
		}
		ids, err := readIndexFile(filepath.Join(r.dirsPath(), e.Name()))
		if err != nil {
			return false, err
		}
		if slices.Contains(ids, id) {
			return true, nil
		}
	}
	return false, nil
}

// pruneIndex drops id from every directory index file. Files that end up
// empty are kept. The caller holds the lock.
func (r *Registry) pruneIndex(id string) error {
	entries, err := os.ReadDir(r.dirsPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return permissionAware(fmt.Errorf("reading directory index: %w", err), r.dirsPath())
	}

	for _, e := range entries {
		if e.IsDir() || !identity.Valid(e.Name()) {
			continue
		}
		path := filepath.Join(r.dirsPath(), e.Name())
		ids, err := readIndexFile(path)
		if err != nil {
			return err
		}

		kept := ids[:0]
		for _, existing := range ids {
			if existing != id {
				kept = append(kept, existing)
			}
		}
		if len(kept) == len(ids) {
			continue
		}
		if err := writeFileAtomic(path, encodeIndex(kept), 0o644); err != nil {
			return permissionAware(err, path)
		}
	}
	return nil
}

func readIndexFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, permissionAware(fmt.Errorf("reading %s: %w", path, err), path)
	}

	ids := []string{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			ids = append(ids, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return ids, nil
}

func encodeIndex(ids []string) []byte {
	var buf bytes.Buffer
	for _, id := range ids {
		buf.WriteString(id)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// appendMoved appends id, removing any earlier occurrence.
func appendMoved(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return append(out, id)
}
