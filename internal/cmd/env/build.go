package env

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/install"
	"github.com/opmodel/devenv/internal/output"
	"github.com/opmodel/devenv/internal/registry"
)

type buildFlags struct {
	directory string
	pkg       string
	name      string
	install   []string
	sources   []string
	variables []string
	id        string
	noBackend bool
}

// NewBuildCmd creates the build command.
func NewBuildCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var f buildFlags

	c := &cobra.Command{
		Use:     "build MODULE",
		Aliases: []string{"create"},
		Short:   "Build and register a development environment",
		Long: `Build a development environment from MODULE and register it.

Install tokens are classified in order: existing directories, URLs,
pkgs.* builder packages, existing *.nix scripts, existing files, and
plain package names. A token of the form @path names a list file whose
lines are package names. Relative paths resolve against --directory.

Every build from a directory mints a fresh identity unless --id is given.
The identity is printed on success.

Examples:
  # Build a python environment for the current directory
  devenv build python -i requests -i ./vendor/lib

  # Build a named variant
  devenv build python -p py311 -n api -V PYTHONPATH=./src

  # Register without invoking the backend
  devenv build go --no-backend`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args[0], cfg, &f)
		},
	}

	c.Flags().StringVarP(&f.directory, "directory", "d", "",
		"Directory the environment belongs to (default: current directory)")
	c.Flags().StringVarP(&f.pkg, "package", "p", "",
		"Module package variant")
	c.Flags().StringVarP(&f.name, "name", "n", "",
		"Alias name for the environment")
	c.Flags().StringArrayVarP(&f.install, "install", "i", nil,
		"Install token (repeatable)")
	c.Flags().StringArrayVarP(&f.sources, "source", "s", nil,
		"Source path considered part of the environment (repeatable)")
	c.Flags().StringArrayVarP(&f.variables, "variable", "V", nil,
		"Environment variable NAME=VALUE (repeatable)")
	c.Flags().StringVar(&f.id, "id", "",
		"Use this identity instead of minting one")
	c.Flags().BoolVar(&f.noBackend, "no-backend", false,
		"Register the environment without invoking the backend")

	return c
}

func runBuild(c *cobra.Command, module string, cfg *cmdtypes.GlobalConfig, f *buildFlags) error { //nolint:gocyclo // orchestration function
	dir, err := cmdutil.ResolveDirectory(f.directory, cfg.WorkDir)
	if err != nil {
		return cmdutil.Exit(nil, "resolving directory", err)
	}
	dir, err = identity.Canonical(dir)
	if err != nil {
		return cmdutil.Exit(nil, "resolving directory", err)
	}

	if err := validateBuildFlags(f); err != nil {
		return cmdutil.Exit(nil, "invalid arguments", err)
	}

	envCfg, err := newConfiguration(module, dir, f)
	if err != nil {
		return cmdutil.Exit(nil, "preparing environment", err)
	}

	validator, err := environment.NewValidator()
	if err != nil {
		return cmdutil.Exit(nil, "loading environment schema", err)
	}
	if err := validator.Validate(envCfg); err != nil {
		return cmdutil.Exit(nil, "environment validation failed", err)
	}

	reg := cfg.Registry()
	if err := checkIdentityDirectory(reg, f.id, dir); err != nil {
		return cmdutil.Exit(nil, "invalid arguments", err)
	}

	id, rollback, err := store(reg, f.id, dir, envCfg)
	if err != nil {
		return cmdutil.Exit(nil, "registering environment", err)
	}

	envLog := output.EnvLogger(id)
	output.Debug("building environment", "id", id, "module", module, "directory", dir)

	if err := reg.RegisterDirectory(dir, id); err != nil {
		rollback()
		return cmdutil.Exit(envLog, "registering environment", err)
	}

	if !f.noBackend {
		gw := gateway(c, cfg)
		action := backend.Build{ID: id, Directory: dir, Alias: f.name, Config: envCfg}
		if _, err := gw.Invoke(c.Context(), action); err != nil {
			envLog.Info(output.FormatEnvLine(id, module, envCfg.Package, output.StatusFailed))
			rollback()
			return cmdutil.Exit(envLog, "backend build failed", err)
		}
	}

	// Set last: moving a name off another environment is not rolled back.
	if f.name != "" {
		if err := reg.SetAlias(f.name, id); err != nil {
			return cmdutil.Exit(envLog, "setting alias", err)
		}
	}

	envLog.Info(output.FormatEnvLine(id, module, envCfg.Package, output.StatusCreated))
	fmt.Fprintln(c.OutOrStdout(), id)
	return nil
}

// checkIdentityDirectory rejects an explicit identity that another
// directory's index already lists.
func checkIdentityDirectory(reg *registry.Registry, id, dir string) error {
	if id == "" || !reg.Exists(id) {
		return nil
	}
	ids, err := reg.LookupByDirectory(dir)
	if err != nil {
		return err
	}
	if slices.Contains(ids, id) {
		return nil
	}
	indexed, err := reg.Indexed(id)
	if err != nil {
		return err
	}
	if indexed {
		return oerrors.NewValidationError(
			fmt.Sprintf("identity %s belongs to another directory", id), reg.Path(id),
			"Rebuild from that directory or omit --id to mint a new identity")
	}
	return nil
}

func validateBuildFlags(f *buildFlags) error {
	if f.id != "" && !identity.Valid(f.id) {
		return oerrors.NewValidationError(
			fmt.Sprintf("invalid identity %q: expected %d lowercase hex characters", f.id, identity.Length), "", "")
	}
	if f.name != "" {
		if err := registry.ValidateName(f.name); err != nil {
			return err
		}
	}
	return nil
}

// newConfiguration classifies install tokens and assembles the document.
// Nothing is written before it succeeds.
func newConfiguration(module, dir string, f *buildFlags) (*environment.Configuration, error) {
	vars, err := cmdutil.ParseVariables(f.variables)
	if err != nil {
		return nil, err
	}

	res, err := install.New(dir).Classify(f.install)
	if err != nil {
		return nil, err
	}

	srcs := make([]string, 0, len(f.sources))
	for _, s := range f.sources {
		if !filepath.IsAbs(s) {
			s = filepath.Join(dir, s)
		}
		srcs = append(srcs, filepath.Clean(s))
	}

	cfg := &environment.Configuration{
		Module:    module,
		Package:   f.pkg,
		Srcs:      srcs,
		Variables: vars,
	}
	res.Apply(cfg)
	cfg.Normalize()

	output.Debug("classified install tokens", "count", res.Len())
	return cfg, nil
}

// store writes cfg under the explicit identity, or under a freshly minted
// one when id is empty. The returned function undoes the write.
func store(reg *registry.Registry, id, dir string, cfg *environment.Configuration) (string, func(), error) {
	if id == "" {
		minted, err := reg.Create(dir, cfg)
		if err != nil {
			return "", nil, err
		}
		return minted, func() {
			if err := reg.Remove(minted); err != nil {
				output.Warn("rolling back registry entry", "id", minted, "error", err)
			}
		}, nil
	}

	rollback := snapshot(reg, id)
	if err := reg.Put(id, cfg); err != nil {
		rollback()
		return "", nil, err
	}
	return id, rollback, nil
}

// snapshot captures the registry state of id and returns a function that
// restores it. A new identity is removed; an overwritten one gets its
// previous document back.
func snapshot(reg *registry.Registry, id string) func() {
	existed := reg.Exists(id)
	var previous *environment.Configuration
	if existed {
		prev, err := reg.Get(id)
		if err != nil {
			output.Debug("previous configuration unreadable", "id", id, "error", err)
		} else {
			previous = prev
		}
	}

	return func() {
		var err error
		switch {
		case previous != nil:
			err = reg.Put(id, previous)
		case !existed:
			err = reg.Remove(id)
		default:
			return
		}
		if err != nil {
			output.Warn("rolling back registry entry", "id", id, "error", err)
		}
	}
}
