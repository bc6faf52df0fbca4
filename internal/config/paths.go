package config

import (
	"os"
	"path/filepath"
)

// Environment variables read directly, outside viper.
const (
	EnvConfig = "DEVENV_CONFIG"
	EnvDebug  = "DEVENV_DEBUG"
)

// Paths contains standard filesystem paths for devenv.
type Paths struct {
	// ConfigFile is the path to the config file (~/.devenv/config.yaml).
	ConfigFile string

	// HomeDir is the devenv home directory (~/.devenv), also the default
	// registry root.
	HomeDir string
}

// DefaultPaths returns the default paths for devenv.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	devenvHome := filepath.Join(homeDir, ".devenv")

	return &Paths{
		ConfigFile: filepath.Join(devenvHome, "config.yaml"),
		HomeDir:    devenvHome,
	}, nil
}

// GetConfigFile returns the config file path.
// If DEVENV_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
