package backend

import (
	"bufio"
	"context"
	"fmt"
	"sort"
	"strings"
)

// ModuleInfo is one module offered by the backend.
type ModuleInfo struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ParseModules parses "name:location" lines, sorted by name. Blank lines are
// ignored; the location may itself contain ':'.
func ParseModules(out string) ([]ModuleInfo, error) {
	modules := []ModuleInfo{}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, location, ok := strings.Cut(line, ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("unexpected module line %q: expected name:location", line)
		}
		modules = append(modules, ModuleInfo{Name: name, Location: location})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading module list: %w", err)
	}

	sort.Slice(modules, func(i, j int) bool {
		return modules[i].Name < modules[j].Name
	})
	return modules, nil
}

// FormatModules renders modules as " - name (location)" lines.
func FormatModules(modules []ModuleInfo) string {
	lines := make([]string, 0, len(modules))
	for _, m := range modules {
		lines = append(lines, fmt.Sprintf(" - %s (%s)", m.Name, m.Location))
	}
	return strings.Join(lines, "\n")
}

// ListModules invokes the modules action and parses its output.
func (g *Gateway) ListModules(ctx context.Context) ([]ModuleInfo, error) {
	out, err := g.Invoke(ctx, Modules{})
	if err != nil {
		return nil, err
	}
	return ParseModules(out)
}
