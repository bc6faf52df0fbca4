// Package environment defines the environment configuration document stored
// once per identity in the registry, and validates it against an embedded
// CUE schema.
package environment

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Configuration describes one environment: the builder module, its variant,
// and the classified install requests.
//
// ID is injected when the document is read from the registry and is never
// written back to disk.
type Configuration struct {
	ID          string     `json:"id,omitempty"`
	Module      string     `json:"module"`
	Package     string     `json:"package"`
	Install     Install    `json:"install"`
	NixPackages []string   `json:"nixPackages"`
	NixScripts  []string   `json:"nixScripts"`
	Srcs        []string   `json:"srcs"`
	Variables   []Variable `json:"variables"`
}

// Install holds the install requests handed to the backend, by category.
type Install struct {
	Packages    []string `json:"packages"`
	Directories []string `json:"directories"`
	URLs        []string `json:"urls"`
	Files       []string `json:"files"`
}

// Variable is one environment variable. Duplicate names are kept in order.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ParseVariable parses a NAME=VALUE pair. The value may contain '='.
func ParseVariable(s string) (Variable, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return Variable{}, fmt.Errorf("invalid variable %q: expected NAME=VALUE", s)
	}
	return Variable{Name: name, Value: value}, nil
}

// Normalize replaces nil lists with empty ones so documents always
// serialize lists as [] rather than null.
func (c *Configuration) Normalize() {
	c.Install.Packages = nonNil(c.Install.Packages)
	c.Install.Directories = nonNil(c.Install.Directories)
	c.Install.URLs = nonNil(c.Install.URLs)
	c.Install.Files = nonNil(c.Install.Files)
	c.NixPackages = nonNil(c.NixPackages)
	c.NixScripts = nonNil(c.NixScripts)
	c.Srcs = nonNil(c.Srcs)
	if c.Variables == nil {
		c.Variables = []Variable{}
	}
}

// Stored returns a normalized copy of c suitable for writing to disk, with
// the ID cleared.
func (c *Configuration) Stored() *Configuration {
	out := c.Clone()
	out.ID = ""
	out.Normalize()
	return out
}

// Clone returns a deep copy of c.
func (c *Configuration) Clone() *Configuration {
	out := *c
	out.Install.Packages = cloneStrings(c.Install.Packages)
	out.Install.Directories = cloneStrings(c.Install.Directories)
	out.Install.URLs = cloneStrings(c.Install.URLs)
	out.Install.Files = cloneStrings(c.Install.Files)
	out.NixPackages = cloneStrings(c.NixPackages)
	out.NixScripts = cloneStrings(c.NixScripts)
	out.Srcs = cloneStrings(c.Srcs)
	if c.Variables != nil {
		out.Variables = append([]Variable(nil), c.Variables...)
	}
	return &out
}

// PackageOrDefault returns the package name, or "default" when unset.
func (c *Configuration) PackageOrDefault() string {
	if c.Package == "" {
		return "default"
	}
	return c.Package
}

// Dependencies returns every install request across all categories, sorted.
func (c *Configuration) Dependencies() []string {
	var deps []string
	deps = append(deps, c.Install.Packages...)
	deps = append(deps, c.Install.Directories...)
	deps = append(deps, c.Install.Files...)
	deps = append(deps, c.Install.URLs...)
	deps = append(deps, c.NixPackages...)
	deps = append(deps, c.NixScripts...)
	sort.Strings(deps)
	return deps
}

// Document returns the generic JSON representation of c, including the
// injected id when set. Queries match against this form.
func (c *Configuration) Document() (map[string]interface{}, error) {
	norm := c.Clone()
	norm.Normalize()

	data, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("encoding configuration: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	return doc, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}
