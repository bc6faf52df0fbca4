package env

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/output"
)

// NewRemoveCmd creates the remove command.
func NewRemoveCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var sf cmdutil.SelectorFlags

	var (
		forceFlag       bool
		keepBackendFlag bool
	)

	c := &cobra.Command{
		Use:     "remove",
		Aliases: []string{"rm"},
		Short:   "Remove a registered environment",
		Long: `Tear down an environment through the backend and delete its registry
entry, alias and directory index reference.

Without a selector the newest environment built from the current directory
is removed.

Examples:
  # Remove by identity
  devenv remove --id 0123456789abcdef

  # Drop the registry entry even if backend teardown fails
  devenv rm --name api --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runRemove(c, cfg, &sf, forceFlag, keepBackendFlag)
		},
	}

	sf.AddTo(c)

	c.Flags().BoolVar(&forceFlag, "force", false,
		"Delete the registry entry even if backend teardown fails")
	c.Flags().BoolVar(&keepBackendFlag, "keep-backend", false,
		"Skip backend teardown")

	return c
}

func runRemove(c *cobra.Command, cfg *cmdtypes.GlobalConfig, sf *cmdutil.SelectorFlags, force, keepBackend bool) error {
	reg := cfg.Registry()

	id, err := cmdutil.SelectIdentity(reg, sf, cfg.WorkDir)
	if err != nil {
		return cmdutil.Exit(nil, "selecting environment", err)
	}

	envLog := output.EnvLogger(id)

	module, pkg := "", ""
	if envCfg, err := reg.Get(id); err == nil {
		module, pkg = envCfg.Module, envCfg.Package
	} else {
		envLog.Debug("reading configuration before removal", "error", err)
	}

	if !keepBackend {
		_, err := gateway(c, cfg).Invoke(c.Context(), backend.Remove{ID: id})
		if err != nil {
			if !force {
				envLog.Info(output.FormatEnvLine(id, module, pkg, output.StatusFailed))
				return cmdutil.Exit(envLog, "backend teardown failed", err)
			}
			envLog.Warn("backend teardown failed, removing registry entry anyway", "error", err)
		}
	}

	if err := reg.Remove(id); err != nil {
		return cmdutil.Exit(envLog, "removing registry entry", err)
	}

	envLog.Info(output.FormatEnvLine(id, module, pkg, output.StatusRemoved))
	return nil
}
