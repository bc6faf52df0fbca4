package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Environment variable prefix for devenv configuration.
const envPrefix = "DEVENV"

// Configuration keys.
const (
	KeyRegistryDir    = "registryDir"
	KeyBackendCommand = "backend.command"
	KeyBackendBaseDir = "backend.baseDir"
	KeyBackendTimeout = "backend.timeout"
	KeyDebug          = "debug"
	KeyLogTimestamps  = "log.timestamps"
)

// envBindings maps keys to the environment variables that override them.
// DEVENV_DEBUG is not bound: any non-empty value enables debug, which viper
// cannot express.
var envBindings = map[string]string{
	KeyRegistryDir:    "DEVENV_HOME",
	KeyBackendCommand: "DEVENV_BACKEND",
	KeyBackendBaseDir: "DEVENV_BASEDIR",
	KeyBackendTimeout: "DEVENV_BACKEND_TIMEOUT",
}

// KnownKeys lists every key a config file may set.
var KnownKeys = []string{
	KeyRegistryDir,
	KeyBackendCommand,
	KeyBackendBaseDir,
	KeyBackendTimeout,
	KeyDebug,
	KeyLogTimestamps,
}

// Loader handles loading and merging configuration from multiple sources.
type Loader struct {
	v *viper.Viper

	// file holds the config file alone, without defaults or env overrides.
	file *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault(KeyRegistryDir, defaults.RegistryDir)
	v.SetDefault(KeyBackendCommand, defaults.Backend.Command)
	v.SetDefault(KeyBackendBaseDir, defaults.Backend.BaseDir)
	v.SetDefault(KeyBackendTimeout, defaults.Backend.Timeout)
	v.SetDefault(KeyDebug, false)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	return &Loader{v: v, file: viper.New()}
}

// Load loads configuration from the given file path.
// If configFile is empty, it uses the default config file path.
// Environment variables take precedence over file values; a missing file is
// not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return nil, fmt.Errorf("getting config file path: %w", err)
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	for _, v := range []*viper.Viper{l.v, l.file} {
		v.SetConfigFile(expandedPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("reading config file %s: %w", expandedPath, err)
			}
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// InFile reports whether key is set in the loaded config file.
func (l *Loader) InFile(key string) bool {
	return l.file.IsSet(key)
}

// FileValue returns the raw config file value of key.
func (l *Loader) FileValue(key string) string {
	return l.file.GetString(key)
}

// UnknownKeys returns config file keys devenv does not recognize, sorted.
func (l *Loader) UnknownKeys() []string {
	known := make(map[string]bool, len(KnownKeys))
	for _, k := range KnownKeys {
		known[strings.ToLower(k)] = true
	}

	var unknown []string
	for _, k := range l.file.AllKeys() {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// ConfigFileExists checks if the config file exists.
func ConfigFileExists(configFile string) (bool, error) {
	if configFile == "" {
		var err error
		configFile, err = GetConfigFile()
		if err != nil {
			return false, err
		}
	}

	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
