// Package config provides CLI command implementations for the config command group.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/config"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  `Configuration management for the devenv CLI.`,
	}

	c.AddCommand(NewConfigInitCmd(cfg))
	c.AddCommand(NewConfigVetCmd(cfg))

	return c
}

// configFilePath returns the resolved config file path with ~ expanded.
func configFilePath(cfg *cmdtypes.GlobalConfig) (string, error) {
	path := cfg.ConfigPath
	if path == "" {
		var err error
		path, err = config.GetConfigFile()
		if err != nil {
			return "", fmt.Errorf("getting config file path: %w", err)
		}
	}

	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("expanding config path: %w", err)
	}
	return expanded, nil
}
