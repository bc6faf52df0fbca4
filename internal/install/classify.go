// Package install classifies raw install tokens into typed install
// categories.
//
// Classification is first-match-wins over an ordered rule table. Tokens of
// the form @path name a list file whose non-blank, non-comment lines are
// package references; list files are expanded before classification and a
// missing list file aborts the whole request.
package install

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
)

// Category names an install bucket.
type Category string

// Install categories, named after their configuration document fields.
const (
	CategoryDirectory  Category = "directories"
	CategoryURL        Category = "urls"
	CategoryNixPackage Category = "nixPackages"
	CategoryNixScript  Category = "nixScripts"
	CategoryFile       Category = "files"
	CategoryPackage    Category = "packages"
)

// listPrefix marks a token as a list file reference.
const listPrefix = "@"

// Rule maps tokens to a category. Rules are evaluated in order and the first
// match wins. When Absolute is set the stored value is the token resolved to
// an absolute path.
type Rule struct {
	Category Category
	Absolute bool
	Match    func(p Probe, token string) bool
}

// Probe answers filesystem questions about a token relative to a base
// directory.
type Probe struct {
	BaseDir string
}

// Path returns token resolved against the base directory.
func (p Probe) Path(token string) string {
	if filepath.IsAbs(token) || p.BaseDir == "" {
		return filepath.Clean(token)
	}
	return filepath.Join(p.BaseDir, token)
}

// IsDir reports whether token names an existing directory. The empty token
// names nothing.
func (p Probe) IsDir(token string) bool {
	if token == "" {
		return false
	}
	info, err := os.Stat(p.Path(token))
	return err == nil && info.IsDir()
}

// IsFile reports whether token names an existing regular file.
func (p Probe) IsFile(token string) bool {
	if token == "" {
		return false
	}
	info, err := os.Stat(p.Path(token))
	return err == nil && info.Mode().IsRegular()
}

// DefaultRules is the classification order. A final catch-all package rule
// guarantees every token lands in exactly one bucket.
var DefaultRules = []Rule{
	{
		Category: CategoryDirectory,
		Absolute: true,
		Match:    func(p Probe, t string) bool { return p.IsDir(t) },
	},
	{
		Category: CategoryURL,
		Match:    func(_ Probe, t string) bool { return strings.Contains(t, "://") },
	},
	{
		Category: CategoryNixPackage,
		Match:    func(_ Probe, t string) bool { return strings.HasPrefix(t, "pkgs.") },
	},
	{
		Category: CategoryNixScript,
		Absolute: true,
		Match:    func(p Probe, t string) bool { return strings.HasSuffix(t, ".nix") && p.IsFile(t) },
	},
	{
		Category: CategoryFile,
		Absolute: true,
		Match:    func(p Probe, t string) bool { return p.IsFile(t) },
	},
	{
		Category: CategoryPackage,
		Match:    func(Probe, string) bool { return true },
	},
}

// Result holds classified tokens by category, each in input order.
type Result struct {
	Packages    []string
	Directories []string
	URLs        []string
	Files       []string
	NixPackages []string
	NixScripts  []string
}

// Install returns the install section of a configuration document.
func (r *Result) Install() environment.Install {
	return environment.Install{
		Packages:    r.Packages,
		Directories: r.Directories,
		URLs:        r.URLs,
		Files:       r.Files,
	}
}

// Apply copies the classified buckets into cfg.
func (r *Result) Apply(cfg *environment.Configuration) {
	cfg.Install = r.Install()
	cfg.NixPackages = r.NixPackages
	cfg.NixScripts = r.NixScripts
}

// Len returns the total number of classified entries.
func (r *Result) Len() int {
	return len(r.Packages) + len(r.Directories) + len(r.URLs) +
		len(r.Files) + len(r.NixPackages) + len(r.NixScripts)
}

func (r *Result) add(c Category, value string) {
	switch c {
	case CategoryDirectory:
		r.Directories = append(r.Directories, value)
	case CategoryURL:
		r.URLs = append(r.URLs, value)
	case CategoryNixPackage:
		r.NixPackages = append(r.NixPackages, value)
	case CategoryNixScript:
		r.NixScripts = append(r.NixScripts, value)
	case CategoryFile:
		r.Files = append(r.Files, value)
	default:
		r.Packages = append(r.Packages, value)
	}
}

// Classifier classifies install tokens.
type Classifier struct {
	// BaseDir resolves relative tokens. Empty means the process working directory.
	BaseDir string

	// Rules overrides DefaultRules when non-nil.
	Rules []Rule

	// ListFiles enables @path list file expansion.
	ListFiles bool
}

// New returns a Classifier using DefaultRules with list files enabled.
func New(baseDir string) *Classifier {
	return &Classifier{BaseDir: baseDir, ListFiles: true}
}

// item is a token after list expansion. Package-forced items skip the rule
// table.
type item struct {
	token        string
	forcePackage bool
}

// Classify sorts tokens into categories. Either the full result or an
// error is returned, never a partial classification.
func (c *Classifier) Classify(tokens []string) (*Result, error) {
	probe := Probe{BaseDir: c.BaseDir}
	if probe.BaseDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolving working directory: %w", err)
		}
		probe.BaseDir = wd
	}

	items, err := c.expand(probe, tokens)
	if err != nil {
		return nil, err
	}

	rules := c.Rules
	if rules == nil {
		rules = DefaultRules
	}

	res := &Result{
		Packages:    []string{},
		Directories: []string{},
		URLs:        []string{},
		Files:       []string{},
		NixPackages: []string{},
		NixScripts:  []string{},
	}
	for _, it := range items {
		if it.forcePackage {
			res.add(CategoryPackage, it.token)
			continue
		}
		category, value := classifyOne(probe, rules, it.token)
		res.add(category, value)
	}
	return res, nil
}

func classifyOne(probe Probe, rules []Rule, token string) (Category, string) {
	for _, rule := range rules {
		if !rule.Match(probe, token) {
			continue
		}
		if rule.Absolute {
			return rule.Category, probe.Path(token)
		}
		return rule.Category, token
	}
	return CategoryPackage, token
}

// expand replaces @path tokens with the package references listed in the file.
func (c *Classifier) expand(probe Probe, tokens []string) ([]item, error) {
	items := make([]item, 0, len(tokens))
	for _, tok := range tokens {
		if !c.ListFiles || !strings.HasPrefix(tok, listPrefix) {
			items = append(items, item{token: tok})
			continue
		}

		path := strings.TrimPrefix(tok, listPrefix)
		if path == "" {
			return nil, oerrors.NewClassificationError("empty list file reference", tok, os.ErrNotExist)
		}

		entries, err := ReadListFile(probe.Path(path))
		if err != nil {
			return nil, oerrors.NewClassificationError(
				fmt.Sprintf("reading list file: %v", err), probe.Path(path), err)
		}
		for _, e := range entries {
			items = append(items, item{token: e, forcePackage: true})
		}
	}
	return items, nil
}

// ReadListFile reads a package list file. Blank lines and lines starting
// with '#' are dropped; remaining lines are trimmed.
func ReadListFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var entries []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return entries, nil
}
