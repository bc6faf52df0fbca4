// Package cmd provides the devenv root command and wires the command groups.
package cmd

import (
	"github.com/spf13/cobra"

	configcmd "github.com/opmodel/devenv/internal/cmd/config"
	"github.com/opmodel/devenv/internal/cmd/env"
	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/config"
	"github.com/opmodel/devenv/internal/output"
	"github.com/opmodel/devenv/internal/version"
)

// rootFlags holds the persistent flag values.
type rootFlags struct {
	config      string
	verbose     bool
	timestamps  bool
	registryDir string
	baseDir     string
	debug       bool
}

// NewRootCmd creates the root command for the devenv CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&cmdtypes.GlobalConfig{})
}

func newRootCmd(cfg *cmdtypes.GlobalConfig) *cobra.Command {
	var f rootFlags

	rootCmd := &cobra.Command{
		Use:   "devenv",
		Short: "Reproducible development environments",
		Long: `devenv declares, identifies and re-enters development environments.

An environment is built from a module, an optional package variant and a
list of install requests. Each build gets a stable identity derived from
the directory it was built for and is recorded in a local registry
(~/.devenv by default). Construction is delegated to a nix backend.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			return initializeGlobals(c, cfg, &f)
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.config, "config", "", "Path to config file (env: DEVENV_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&f.timestamps, "timestamps", true, "Show timestamps in log output")
	rootCmd.PersistentFlags().StringVar(&f.registryDir, "registry-dir", "", "Registry root directory (env: DEVENV_HOME)")
	rootCmd.PersistentFlags().StringVar(&f.baseDir, "basedir", "", "Backend expression directory (env: DEVENV_BASEDIR)")
	rootCmd.PersistentFlags().BoolVar(&f.debug, "debug", false, "Show full backend traces on failure (env: DEVENV_DEBUG)")

	for _, c := range env.NewCommands(cfg) {
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(configcmd.NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd(cfg))

	return rootCmd
}

// initializeGlobals resolves configuration and sets up logging.
func initializeGlobals(c *cobra.Command, cfg *cmdtypes.GlobalConfig, f *rootFlags) error {
	resolved, err := config.Resolve(config.ResolveOptions{
		ConfigFlag:      f.config,
		RegistryDirFlag: f.registryDir,
		BaseDirFlag:     f.baseDir,
		DebugFlag:       f.debug,
	})
	if err != nil {
		return &cmdtypes.ExitError{Code: cmdtypes.ExitGeneralError, Err: err}
	}

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: f.verbose}
	if c.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(f.timestamps)
	} else if resolved.Config != nil && resolved.Config.Log.Timestamps != nil {
		logCfg.Timestamps = resolved.Config.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	cfg.Resolved = resolved
	cfg.ConfigPath = resolved.ConfigPath.Value
	cfg.RegistryDir = resolved.RegistryDir.Value
	cfg.Verbose = f.verbose

	info := version.Get()
	output.Debug("devenv started", "version", info.Version, "cue_sdk", info.CUESDKVersion)
	config.LogResolvedValues(resolved.Values())

	return nil
}
