package env

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/output"
	"github.com/opmodel/devenv/internal/query"
	"github.com/opmodel/devenv/internal/registry"
)

type listFlags struct {
	directory string
	all       bool
	options   []string
	filter    string
	output    cmdutil.OutputFlags
}

// NewListCmd creates the list command.
func NewListCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var f listFlags

	c := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered environments",
		Long: `List environments built from a directory, or every registered environment.

--option KEY=VALUE matches document fields exactly; dotted keys reach into
nested fields and JSON values match lists and objects. Every option must
match. --filter takes a boolean expression over the document, for example
'module == "python" && len(install.packages) > 2'.

Examples:
  # Environments of the current directory
  devenv list

  # Every python environment, as a table
  devenv list -a --option module=python -o table

  # Environments with a variant
  devenv list -a --filter 'package != ""' -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runList(c, cfg, &f)
		},
	}

	c.Flags().StringVarP(&f.directory, "directory", "d", "",
		"List environments built from this directory (default: current directory)")
	c.Flags().BoolVarP(&f.all, "all", "a", false,
		"List every registered environment")
	c.Flags().StringArrayVar(&f.options, "option", nil,
		"Match KEY=VALUE against the configuration (repeatable)")
	c.Flags().StringVar(&f.filter, "filter", "",
		"Boolean filter expression")
	f.output.AddTo(c, string(output.FormatText), output.ValidFormats())

	c.MarkFlagsMutuallyExclusive("directory", "all")

	return c
}

func runList(c *cobra.Command, cfg *cmdtypes.GlobalConfig, f *listFlags) error {
	format, err := f.output.Parse(output.ValidFormats())
	if err != nil {
		return cmdutil.Exit(nil, "invalid arguments", err)
	}

	reg := cfg.Registry()
	src, err := listSource(reg, cfg, f)
	if err != nil {
		return cmdutil.Exit(nil, "listing environments", err)
	}

	result, err := selectEnvironments(src, f)
	if err != nil {
		return cmdutil.Exit(nil, "querying environments", err)
	}

	cfgs := result.Sorted()
	output.Debug("listing environments", "count", len(cfgs), "format", format)
	if err := cmdutil.WriteEnvironments(c.OutOrStdout(), reg, cfgs, format); err != nil {
		return cmdutil.Exit(nil, "writing output", err)
	}
	return nil
}

func listSource(reg *registry.Registry, cfg *cmdtypes.GlobalConfig, f *listFlags) (query.Source, error) {
	if f.all {
		return reg, nil
	}
	dir, err := cmdutil.ResolveDirectory(f.directory, cfg.WorkDir)
	if err != nil {
		return nil, err
	}
	ids, err := reg.LookupByDirectory(dir)
	if err != nil {
		return nil, err
	}
	return cmdutil.DirectorySource(reg, ids), nil
}

// selectEnvironments applies --option predicates and then --filter.
func selectEnvironments(src query.Source, f *listFlags) (query.Result, error) {
	var (
		result query.Result
		err    error
	)

	switch {
	case len(f.options) > 0:
		var preds map[string]interface{}
		preds, err = query.ParsePredicates(f.options)
		if err != nil {
			return nil, err
		}
		result, err = query.Search(src, preds)
	case f.filter != "":
		return query.Filter(src, f.filter)
	default:
		var all map[string]*environment.Configuration
		all, err = src.GetAll()
		result = query.Result(all)
	}
	if err != nil {
		return nil, err
	}

	if f.filter != "" {
		return result.Narrow(f.filter)
	}
	return result, nil
}
