package env

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/output"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var noColorFlag bool

	c := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two environment configurations",
		Long: `Show a structural diff between two registered environments, addressed by
identity or alias name. Nothing is printed when they are equivalent.

Examples:
  devenv diff 0123456789abcdef api`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return runDiff(c, args[0], args[1], !noColorFlag && output.IsTTY(), cfg)
		},
	}

	c.Flags().BoolVar(&noColorFlag, "no-color", false, "Disable colored output")

	return c
}

func runDiff(c *cobra.Command, fromRef, toRef string, useColor bool, cfg *cmdtypes.GlobalConfig) error {
	reg := cfg.Registry()

	from, err := lookup(reg, fromRef)
	if err != nil {
		return cmdutil.Exit(nil, "reading environment", err)
	}
	to, err := lookup(reg, toRef)
	if err != nil {
		return cmdutil.Exit(nil, "reading environment", err)
	}

	fromYAML, err := storedYAML(from)
	if err != nil {
		return cmdutil.Exit(nil, "encoding configuration", err)
	}
	toYAML, err := storedYAML(to)
	if err != nil {
		return cmdutil.Exit(nil, "encoding configuration", err)
	}

	report, err := output.DiffYAML(from.ID, fromYAML, to.ID, toYAML, useColor)
	if err != nil {
		return cmdutil.Exit(nil, "comparing configurations", err)
	}
	if report == "" {
		output.Info("configurations are identical")
		return nil
	}

	fmt.Fprint(c.OutOrStdout(), report)
	return nil
}

// storedYAML encodes the stored form of cfg, without its identity.
func storedYAML(cfg *environment.Configuration) ([]byte, error) {
	data, err := yaml.Marshal(cfg.Stored())
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", cfg.ID, err)
	}
	return data, nil
}
