package env

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/identity"
	"github.com/opmodel/devenv/internal/output"
	"github.com/opmodel/devenv/internal/registry"
)

const formatTree = "tree"

var showFormats = []string{string(output.FormatYAML), string(output.FormatJSON), formatTree}

// NewShowCmd creates the show command.
func NewShowCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var format string

	c := &cobra.Command{
		Use:   "show ID|NAME",
		Short: "Show one environment configuration",
		Long: `Print the stored configuration of an environment, addressed by identity
or alias name.

Examples:
  devenv show 0123456789abcdef
  devenv show api -o json
  devenv show api -o tree`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runShow(c, args[0], format, cfg)
		},
	}

	c.Flags().StringVarP(&format, "output", "o", string(output.FormatYAML),
		"Output format (yaml, json, tree)")

	return c
}

func runShow(c *cobra.Command, ref, format string, cfg *cmdtypes.GlobalConfig) error {
	reg := cfg.Registry()

	envCfg, err := lookup(reg, ref)
	if err != nil {
		return cmdutil.Exit(nil, "reading environment", err)
	}

	if format == formatTree {
		_, err = io.WriteString(c.OutOrStdout(), cmdutil.EnvironmentTree(envCfg))
		return err
	}

	of := cmdutil.OutputFlags{Format: format}
	docFormat, err := of.Parse(showFormats)
	if err != nil {
		return cmdutil.Exit(nil, "invalid arguments", err)
	}
	if err := output.WriteDocument(c.OutOrStdout(), envCfg, docFormat); err != nil {
		return cmdutil.Exit(nil, "writing output", err)
	}
	return nil
}

// lookup reads an environment by identity, falling back to its alias name.
func lookup(reg *registry.Registry, ref string) (*environment.Configuration, error) {
	id := ref
	if !identity.Valid(ref) || !reg.Exists(ref) {
		resolved, err := reg.ResolveName(ref)
		if err != nil {
			return nil, err
		}
		id = resolved
	}
	return reg.Get(id)
}
