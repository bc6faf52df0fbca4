package config

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// fileView is the YAML shape of a config file. Durations are written as
// strings so the file stays editable.
type fileView struct {
	RegistryDir string `yaml:"registryDir"`
	Backend     struct {
		Command string `yaml:"command"`
		BaseDir string `yaml:"baseDir"`
		Timeout string `yaml:"timeout"`
	} `yaml:"backend"`
	Debug bool `yaml:"debug"`
}

// keyComments documents top-level and backend keys in generated files.
var keyComments = map[string]string{
	"registryDir": "Registry root holding environment documents (env: DEVENV_HOME).",
	"backend":     "Build backend invoked as: <command> <baseDir> --argstr action ...",
	"command":     "Backend executable (env: DEVENV_BACKEND).",
	"baseDir":     "Backend expression directory (env: DEVENV_BASEDIR).",
	"timeout":     "Bound for modules, build and remove, e.g. 30m. 0 disables it.",
	"debug":       "Pass --show-trace and report full backend errors (env: DEVENV_DEBUG).",
}

// RenderYAML renders cfg as a commented YAML config file.
func RenderYAML(cfg *Config) ([]byte, error) {
	var view fileView
	view.RegistryDir = cfg.RegistryDir
	view.Backend.Command = cfg.Backend.Command
	view.Backend.BaseDir = cfg.Backend.BaseDir
	view.Backend.Timeout = cfg.Backend.Timeout.String()
	view.Debug = cfg.Debug

	var doc yaml.Node
	if err := doc.Encode(&view); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	annotate(&doc)

	var buf bytes.Buffer
	buf.WriteString("# devenv configuration\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}
	return buf.Bytes(), nil
}

// DefaultConfigYAML renders the default configuration.
func DefaultConfigYAML() ([]byte, error) {
	return RenderYAML(DefaultConfig())
}

// annotate attaches keyComments to mapping keys, recursively.
func annotate(n *yaml.Node) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			annotate(c)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			if c, ok := keyComments[key.Value]; ok {
				key.HeadComment = c
			}
			annotate(n.Content[i+1])
		}
	}
}
