// Package config provides configuration loading and management.
package config

import "time"

// DefaultBackendTimeout bounds non-interactive backend actions when the
// config does not say otherwise. Zero disables the bound.
const DefaultBackendTimeout time.Duration = 0

// BackendConfig contains build backend settings.
type BackendConfig struct {
	// Command is the backend executable.
	// Env: DEVENV_BACKEND, Default: nix-shell
	Command string `mapstructure:"command" yaml:"command"`

	// BaseDir is the backend expression directory.
	// Env: DEVENV_BASEDIR, Default: ~/.devenv/backend
	BaseDir string `mapstructure:"baseDir" yaml:"baseDir"`

	// Timeout bounds module listing, builds and removals, e.g. "30m".
	// Env: DEVENV_BACKEND_TIMEOUT, Default: no limit
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the devenv CLI configuration, loaded from
// ~/.devenv/config.yaml.
type Config struct {
	// RegistryDir is the registry root holding environment documents.
	// Env: DEVENV_HOME, Default: ~/.devenv
	RegistryDir string `mapstructure:"registryDir" yaml:"registryDir"`

	// Backend contains build backend settings.
	Backend BackendConfig `mapstructure:"backend" yaml:"backend"`

	// Debug passes --show-trace to the backend and reports full backend
	// errors.
	// Env: DEVENV_DEBUG (any value other than "", "0" or "false")
	Debug bool `mapstructure:"debug" yaml:"debug"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `devenv config init` to generate the initial config file.
func DefaultConfig() *Config {
	return &Config{
		RegistryDir: "~/.devenv",
		Backend: BackendConfig{
			Command: "nix-shell",
			BaseDir: "~/.devenv/backend",
			Timeout: DefaultBackendTimeout,
		},
	}
}

// ResolvedValue records the effective value of one setting and the lower
// precedence values it shadowed.
type ResolvedValue struct {
	Key      string
	Value    string
	Source   ConfigSource
	Shadowed map[ConfigSource]string
}
