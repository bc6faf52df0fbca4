package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show devenv version information.

Displays:
  - devenv version, commit, and build date
  - CUE SDK version (embedded in the CLI)
  - the build backend binary and its version`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVersion(c, cfg)
		},
	}
}

func runVersion(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	command := backend.DefaultCommand
	if cfg.Resolved != nil && cfg.Resolved.BackendCommand.Value != "" {
		command = cfg.Resolved.BackendCommand.Value
	}

	info := version.Get()
	backendInfo := version.DetectBackend(c.Context(), command)

	fmt.Fprintln(c.OutOrStdout(), version.FullVersionString(info, backendInfo))
	return nil
}
