package env

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/output"
)

// NewRunCmd creates the run command.
func NewRunCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var sf cmdutil.SelectorFlags

	c := &cobra.Command{
		Use:   "run [CMD...]",
		Short: "Enter an environment or run a command in it",
		Long: `Enter a registered environment, or run CMD inside it.

Without a selector the newest environment built from the current directory
is used. Command words are joined with spaces and run by the backend shell.

Examples:
  # Open a shell in the current directory's environment
  devenv run

  # Run tests in the newest python environment of a project
  devenv run -d ~/src/api -m python -- pytest -q

  # Enter a named environment
  devenv run --name api`,
		RunE: func(c *cobra.Command, args []string) error {
			return runRun(c, args, cfg, &sf)
		},
	}

	sf.AddTo(c)
	return c
}

func runRun(c *cobra.Command, args []string, cfg *cmdtypes.GlobalConfig, sf *cmdutil.SelectorFlags) error {
	reg := cfg.Registry()

	id, err := cmdutil.SelectIdentity(reg, sf, cfg.WorkDir)
	if err != nil {
		return cmdutil.Exit(nil, "selecting environment", err)
	}

	envLog := output.EnvLogger(id)
	envLog.Debug("entering environment", "cmd", args)

	if _, err := gateway(c, cfg).Invoke(c.Context(), backend.Run{ID: id, Cmd: args}); err != nil {
		return cmdutil.Exit(envLog, "run failed", err)
	}
	return nil
}
