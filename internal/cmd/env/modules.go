package env

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/backend"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
)

// NewModulesCmd creates the modules command.
func NewModulesCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List available environment modules",
		Long: `List the modules the build backend can construct environments from.

Each line shows the module name and the location it is defined in.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runModules(c, cfg)
		},
	}
}

func runModules(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	modules, err := gateway(c, cfg).ListModules(c.Context())
	if err != nil {
		return cmdutil.Exit(nil, "listing modules", err)
	}

	if len(modules) == 0 {
		return nil
	}
	fmt.Fprintln(c.OutOrStdout(), backend.FormatModules(modules))
	return nil
}
