package cmdutil

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/output"
	"github.com/opmodel/devenv/internal/registry"
)

// EnvironmentPath returns the path users source for an environment: the
// alias link when it resolves to id, otherwise the identity container.
func EnvironmentPath(reg *registry.Registry, id string) string {
	return reg.ResolveAlias(id).Path
}

// WriteEnvironments renders configurations in the given format. cfgs must
// carry their injected ids and are rendered in slice order.
func WriteEnvironments(w io.Writer, reg *registry.Registry, cfgs []*environment.Configuration, format output.OutputFormat) error {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		docs := make([]*environment.Configuration, 0, len(cfgs))
		for _, cfg := range cfgs {
			c := cfg.Clone()
			c.Normalize()
			docs = append(docs, c)
		}
		return output.WriteDocument(w, docs, format)
	case output.FormatTable:
		_, err := io.WriteString(w, EnvironmentTable(reg, cfgs))
		return err
	default:
		_, err := io.WriteString(w, EnvironmentText(reg, cfgs))
		return err
	}
}

// EnvironmentText renders the plain listing, one block per environment
// separated by a blank line.
func EnvironmentText(reg *registry.Registry, cfgs []*environment.Configuration) string {
	blocks := make([]string, 0, len(cfgs))
	for _, cfg := range cfgs {
		var sb strings.Builder
		fmt.Fprintf(&sb, "Id: %s\n", cfg.ID)
		fmt.Fprintf(&sb, "Module: %s\n", cfg.Module)
		fmt.Fprintf(&sb, "Package: %s\n", cfg.PackageOrDefault())
		fmt.Fprintf(&sb, "Environment: %s\n", filepath.Join(EnvironmentPath(reg, cfg.ID), "etc", "environment"))
		sb.WriteString("Dependencies:\n")
		for _, dep := range cfg.Dependencies() {
			fmt.Fprintf(&sb, " - %s\n", dep)
		}
		blocks = append(blocks, sb.String())
	}
	return strings.Join(blocks, "\n")
}

// EnvironmentTable renders a summary table.
func EnvironmentTable(reg *registry.Registry, cfgs []*environment.Configuration) string {
	tbl := output.NewTable("ID", "NAME", "MODULE", "PACKAGE", "DEPS")
	for _, cfg := range cfgs {
		var name string
		if alias := reg.ResolveAlias(cfg.ID); alias.Status == registry.AliasResolved {
			name = alias.Name
		}
		tbl.Row(cfg.ID, name, cfg.Module, cfg.PackageOrDefault(), strconv.Itoa(len(cfg.Dependencies())))
	}
	return tbl.String() + "\n"
}

// EnvironmentTree renders one configuration as a tree of its install
// categories, sources and variables.
func EnvironmentTree(cfg *environment.Configuration) string {
	vars := make([]string, 0, len(cfg.Variables))
	for _, v := range cfg.Variables {
		vars = append(vars, v.Name+"="+v.Value)
	}

	title := fmt.Sprintf("%s %s/%s", cfg.ID, cfg.Module, cfg.PackageOrDefault())
	return output.RenderTree(title, []output.TreeGroup{
		{Name: "packages", Items: cfg.Install.Packages},
		{Name: "directories", Items: cfg.Install.Directories},
		{Name: "files", Items: cfg.Install.Files},
		{Name: "urls", Items: cfg.Install.URLs},
		{Name: "nixPackages", Items: cfg.NixPackages},
		{Name: "nixScripts", Items: cfg.NixScripts},
		{Name: "srcs", Items: cfg.Srcs},
		{Name: "variables", Items: vars},
	}, false)
}
