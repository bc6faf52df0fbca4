// Package env provides the environment lifecycle commands: modules, build,
// run, remove, list, show and diff.
package env

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
)

// NewCommands returns every environment command, ready to be attached to
// the root command.
func NewCommands(cfg *cmdtypes.GlobalConfig) []*cobra.Command {
	return []*cobra.Command{
		NewModulesCmd(cfg),
		NewBuildCmd(cfg),
		NewRunCmd(cfg),
		NewRemoveCmd(cfg),
		NewListCmd(cfg),
		NewShowCmd(cfg),
		NewDiffCmd(cfg),
	}
}

// gateway returns the configured backend gateway streaming through the
// command's stdio.
func gateway(c *cobra.Command, cfg *cmdtypes.GlobalConfig) *backend.Gateway {
	gw := cfg.Backend()
	gw.Stdin = c.InOrStdin()
	gw.Stdout = c.OutOrStdout()
	gw.Stderr = c.ErrOrStderr()
	return gw
}
