package cmdutil

import (
	"fmt"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/query"
	"github.com/opmodel/devenv/internal/registry"
)

// SelectIdentity resolves selector flags to one registered identity.
//
// --id must name a registered environment and --name an alias. Otherwise the
// directory (default workDir) is looked up and its newest environment is
// chosen, optionally narrowed by --module and --package.
func SelectIdentity(reg *registry.Registry, f *SelectorFlags, workDir string) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}

	switch {
	case f.ID != "":
		if !identity.Valid(f.ID) {
			return "", oerrors.NewValidationError(
				fmt.Sprintf("invalid identity %q: expected %d lowercase hex characters", f.ID, identity.Length), "", "")
		}
		if !reg.Exists(f.ID) {
			return "", oerrors.NewNotFoundError(
				fmt.Sprintf("no environment registered with identity %s", f.ID),
				reg.Path(f.ID),
				"Run 'devenv list --all' to see registered environments")
		}
		return f.ID, nil
	case f.Name != "":
		return reg.ResolveName(f.Name)
	}

	dir, err := ResolveDirectory(f.Directory, workDir)
	if err != nil {
		return "", err
	}
	ids, err := reg.LookupByDirectory(dir)
	if err != nil {
		return "", err
	}

	if f.Module != "" {
		preds := map[string]interface{}{"module": f.Module}
		if f.Package != "" {
			preds["package"] = f.Package
		}
		found, err := query.Search(DirectorySource(reg, ids), preds)
		if err != nil {
			return "", err
		}
		ids = keepOrder(ids, found)
	}

	// The index lists oldest first; entries removed out of band are skipped.
	for i := len(ids) - 1; i >= 0; i-- {
		if reg.Exists(ids[i]) {
			return ids[i], nil
		}
	}

	return "", oerrors.NewNotFoundError(
		fmt.Sprintf("no environment for %s in %s", f.LogName(), dir),
		dir,
		"Build one with 'devenv build MODULE' or pass --id")
}

// DirectorySource returns a query source over the given identities.
func DirectorySource(reg *registry.Registry, ids []string) query.Source {
	return query.SourceFunc(func() (map[string]*environment.Configuration, error) {
		return reg.GetMany(ids), nil
	})
}

func keepOrder(ids []string, found query.Result) []string {
	out := make([]string, 0, len(found))
	for _, id := range ids {
		if _, ok := found[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
