package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/opmodel/devenv/internal/output"
)

// ConfigSource indicates where a configuration value came from.
type ConfigSource string

const (
	// SourceFlag indicates value came from command-line flag.
	SourceFlag ConfigSource = "flag"
	// SourceEnv indicates value came from environment variable.
	SourceEnv ConfigSource = "env"
	// SourceConfig indicates value came from config file.
	SourceConfig ConfigSource = "config"
	// SourceDefault indicates value is the built-in default.
	SourceDefault ConfigSource = "default"
)

// ResolveOptions carries raw flag values. Empty strings mean the flag was
// not given.
type ResolveOptions struct {
	ConfigFlag      string
	RegistryDirFlag string
	BaseDirFlag     string
	DebugFlag       bool
}

// ResolvedConfig is the effective configuration after applying precedence
// flag > env > config file > default.
type ResolvedConfig struct {
	Config *Config

	ConfigPath     ResolvedValue
	RegistryDir    ResolvedValue
	BackendCommand ResolvedValue
	BackendBaseDir ResolvedValue
	BackendTimeout time.Duration
	Debug          ResolvedValue
}

// Values returns every tracked value, for debug logging.
func (r *ResolvedConfig) Values() []ResolvedValue {
	return []ResolvedValue{r.ConfigPath, r.RegistryDir, r.BackendCommand, r.BackendBaseDir, r.Debug}
}

// DebugEnabled reports whether debug mode resolved to on.
func (r *ResolvedConfig) DebugEnabled() bool {
	return r.Debug.Value == "true"
}

// ResolveConfigPathOptions contains options for config path resolution.
type ResolveConfigPathOptions struct {
	// FlagValue is the --config flag value (empty if not set).
	FlagValue string
}

// ResolveConfigPath resolves the config file path using precedence:
// (1) --config flag, (2) DEVENV_CONFIG env, (3) ~/.devenv/config.yaml.
func ResolveConfigPath(opts ResolveConfigPathOptions) (ResolvedValue, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return ResolvedValue{}, err
	}

	return pick("config", []candidate{
		{SourceFlag, opts.FlagValue, opts.FlagValue != ""},
		envCandidate(EnvConfig),
		{SourceDefault, paths.ConfigFile, true},
	}), nil
}

// Resolve loads the config file and resolves every setting.
func Resolve(opts ResolveOptions) (*ResolvedConfig, error) {
	configPath, err := ResolveConfigPath(ResolveConfigPathOptions{FlagValue: opts.ConfigFlag})
	if err != nil {
		return nil, fmt.Errorf("resolving config path: %w", err)
	}

	loader := NewLoader()
	cfg, err := loader.Load(configPath.Value)
	if err != nil {
		return nil, err
	}

	defaults := DefaultConfig()
	res := &ResolvedConfig{
		Config:     cfg,
		ConfigPath: configPath,
		RegistryDir: pick(KeyRegistryDir, []candidate{
			{SourceFlag, opts.RegistryDirFlag, opts.RegistryDirFlag != ""},
			envCandidate(envBindings[KeyRegistryDir]),
			fileCandidate(loader, KeyRegistryDir),
			{SourceDefault, defaults.RegistryDir, true},
		}),
		BackendCommand: pick(KeyBackendCommand, []candidate{
			envCandidate(envBindings[KeyBackendCommand]),
			fileCandidate(loader, KeyBackendCommand),
			{SourceDefault, defaults.Backend.Command, true},
		}),
		BackendBaseDir: pick(KeyBackendBaseDir, []candidate{
			{SourceFlag, opts.BaseDirFlag, opts.BaseDirFlag != ""},
			envCandidate(envBindings[KeyBackendBaseDir]),
			fileCandidate(loader, KeyBackendBaseDir),
			{SourceDefault, defaults.Backend.BaseDir, true},
		}),
		BackendTimeout: cfg.Backend.Timeout,
		Debug: pick(KeyDebug, []candidate{
			{SourceFlag, "true", opts.DebugFlag},
			{SourceEnv, strconv.FormatBool(truthy(os.Getenv(EnvDebug))), os.Getenv(EnvDebug) != ""},
			{SourceConfig, strconv.FormatBool(cfg.Debug), loader.InFile(KeyDebug)},
			{SourceDefault, "false", true},
		}),
	}

	for _, rv := range []*ResolvedValue{&res.RegistryDir, &res.BackendBaseDir} {
		expanded, err := ExpandPath(rv.Value)
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", rv.Key, err)
		}
		rv.Value = expanded
	}

	return res, nil
}

type candidate struct {
	source ConfigSource
	value  string
	set    bool
}

func envCandidate(name string) candidate {
	v, ok := os.LookupEnv(name)
	return candidate{SourceEnv, v, ok && v != ""}
}

func fileCandidate(l *Loader, key string) candidate {
	return candidate{SourceConfig, l.FileValue(key), l.InFile(key)}
}

// pick returns the first set candidate and records every later set one as
// shadowed.
func pick(key string, candidates []candidate) ResolvedValue {
	rv := ResolvedValue{Key: key, Shadowed: make(map[ConfigSource]string)}
	found := false
	for _, c := range candidates {
		if !c.set {
			continue
		}
		if !found {
			rv.Value = c.value
			rv.Source = c.source
			found = true
			continue
		}
		rv.Shadowed[c.source] = c.value
	}
	return rv
}

// truthy interprets DEVENV_DEBUG: set to anything but "0" or "false".
func truthy(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return s != "" && s != "0" && s != "false"
}

// LogResolvedValues logs configuration resolution at DEBUG level.
func LogResolvedValues(values []ResolvedValue) {
	for _, v := range values {
		output.Debug("config value resolved",
			"key", v.Key,
			"value", v.Value,
			"source", v.Source,
		)
		for source, shadowed := range v.Shadowed {
			output.Debug("  shadowed by higher precedence",
				"key", v.Key,
				"shadowed_source", source,
				"shadowed_value", shadowed,
			)
		}
	}
}
