package config

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/cmdutil"
	"github.com/opmodel/devenv/internal/config"
	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var environmentsFlag bool

	c := &cobra.Command{
		Use:   "vet",
		Short: "Validate the devenv configuration file",
		Long: `Validate the devenv configuration file.

Unknown keys and invalid values are reported. With --environments every
registered environment document is also checked against the environment
schema.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return runVet(c, cfg, environmentsFlag)
		},
	}

	c.Flags().BoolVar(&environmentsFlag, "environments", false,
		"Also validate every registered environment document")

	return c
}

func runVet(c *cobra.Command, cfg *cmdtypes.GlobalConfig, environments bool) error {
	path, err := configFilePath(cfg)
	if err != nil {
		return err
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		output.Error("config file not found", "path", path)
		return &cmdtypes.ExitError{
			Code:    cmdtypes.ExitNotFound,
			Err:     fmt.Errorf("config file not found: %s", path),
			Printed: true,
		}
	}

	if err := config.ValidateFile(path); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			output.Error("config validation failed", "path", path)
			for _, e := range validationErrs {
				output.Error(e.Message, "field", e.Field)
			}
			return &cmdtypes.ExitError{Code: cmdtypes.ExitValidationError, Err: err, Printed: true}
		}
		return fmt.Errorf("validating config: %w", err)
	}
	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Config file is valid: "+path))

	if !environments {
		return nil
	}
	return vetEnvironments(c, cfg)
}

// vetEnvironments validates the raw document of every registered identity.
func vetEnvironments(c *cobra.Command, cfg *cmdtypes.GlobalConfig) error {
	validator, err := environment.NewValidator()
	if err != nil {
		return fmt.Errorf("loading environment schema: %w", err)
	}

	reg := cfg.Registry()
	ids, err := reg.IDs()
	if err != nil {
		return cmdutil.Exit(nil, "listing environments", err)
	}

	invalid := 0
	for _, id := range ids {
		envLog := output.EnvLogger(id)
		data, err := reg.RawDocument(id)
		if err == nil {
			err = validator.ValidateJSON(reg.DocumentPath(id), data)
		}
		if err != nil {
			invalid++
			cmdutil.PrintError(envLog, "invalid environment", err)
			continue
		}
		envLog.Debug("environment document valid")
	}

	if invalid > 0 {
		return &cmdtypes.ExitError{
			Code:    cmdtypes.ExitValidationError,
			Err:     fmt.Errorf("%d of %d environment documents invalid", invalid, len(ids)),
			Printed: true,
		}
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark(fmt.Sprintf("%d environment documents valid", len(ids))))
	return nil
}
