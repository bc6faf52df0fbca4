// Package cmdutil provides shared command utilities for environment
// subcommands. It centralizes selector flags, identity resolution,
// environment rendering, and error reporting.
package cmdutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/output"
)

// SelectorFlags holds flags for choosing one registered environment
// (run, remove).
type SelectorFlags struct {
	ID        string
	Directory string
	Name      string
	Module    string
	Package   string
}

// AddTo registers the selector flags on the given cobra command.
func (f *SelectorFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ID, "id", "",
		"Environment identity")
	cmd.Flags().StringVarP(&f.Directory, "directory", "d", "",
		"Directory the environment was built from (default: current directory)")
	cmd.Flags().StringVar(&f.Name, "name", "",
		"Environment alias name")
	cmd.Flags().StringVarP(&f.Module, "module", "m", "",
		"Select the newest environment of this module in the directory")
	cmd.Flags().StringVarP(&f.Package, "package", "p", "",
		"Narrow --module to this package variant")
}

// Validate checks that at most one selector kind is used. --directory and
// --module combine; --package requires --module.
func (f *SelectorFlags) Validate() error {
	kinds := 0
	if f.ID != "" {
		kinds++
	}
	if f.Name != "" {
		kinds++
	}
	if f.Directory != "" || f.Module != "" {
		kinds++
	}
	if kinds > 1 {
		return oerrors.NewValidationError(
			"--id, --name and --directory/--module are mutually exclusive", "", "")
	}
	if f.Package != "" && f.Module == "" {
		return oerrors.NewValidationError("--package requires --module", "", "")
	}
	return nil
}

// LogName returns a human-readable selector description for logs.
func (f *SelectorFlags) LogName() string {
	switch {
	case f.ID != "":
		return "id " + f.ID
	case f.Name != "":
		return "name " + f.Name
	case f.Module != "":
		return "module " + f.Module
	case f.Directory != "":
		return "directory " + f.Directory
	default:
		return "current directory"
	}
}

// OutputFlags holds the output format flag.
type OutputFlags struct {
	Format string
}

// AddTo registers -o/--output with the given default and valid formats.
func (f *OutputFlags) AddTo(cmd *cobra.Command, def string, valid []string) {
	cmd.Flags().StringVarP(&f.Format, "output", "o", def,
		fmt.Sprintf("Output format (%s)", joinFormats(valid)))
}

// Parse validates the format against valid.
func (f *OutputFlags) Parse(valid []string) (output.OutputFormat, error) {
	format, ok := output.ParseOutputFormat(f.Format)
	if ok {
		for _, v := range valid {
			if string(format) == v {
				return format, nil
			}
		}
	}
	return "", oerrors.NewValidationError(
		fmt.Sprintf("invalid output format %q", f.Format), "",
		"Valid formats: "+joinFormats(valid))
}

func joinFormats(valid []string) string {
	return strings.Join(valid, ", ")
}

// ResolveDirectory returns dir as an absolute path, defaulting to workDir
// and then to the process working directory.
func ResolveDirectory(dir, workDir string) (string, error) {
	if dir == "" {
		dir = workDir
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if !filepath.IsAbs(dir) && workDir != "" {
		dir = filepath.Join(workDir, dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory %q: %w", dir, err)
	}
	return abs, nil
}

// ParseVariables parses repeated NAME=VALUE flags, keeping order and
// duplicates.
func ParseVariables(values []string) ([]environment.Variable, error) {
	vars := make([]environment.Variable, 0, len(values))
	for _, v := range values {
		parsed, err := environment.ParseVariable(v)
		if err != nil {
			return nil, oerrors.NewValidationError(err.Error(), "", "Use --variable NAME=VALUE")
		}
		vars = append(vars, parsed)
	}
	return vars, nil
}
