package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/devenv/internal/cmdtypes"
	"github.com/opmodel/devenv/internal/config"
	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/registry"
)

// isolate points HOME at a temp dir and clears DEVENV_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{"DEVENV_HOME", "DEVENV_BACKEND", "DEVENV_BASEDIR",
		"DEVENV_BACKEND_TIMEOUT", "DEVENV_DEBUG", "DEVENV_CONFIG"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
	return home
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"modules", "build", "run", "remove", "list", "show", "diff", "config", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"config", "verbose", "timestamps", "registry-dir", "basedir", "debug"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoot_ResolvesConfiguration(t *testing.T) {
	home := isolate(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("registryDir: /from/file\nbackend:\n  command: my-nix\n"), 0o600))
	t.Setenv("DEVENV_HOME", "/from/env")

	cfg := &cmdtypes.GlobalConfig{}
	root := newRootCmd(cfg)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", configPath, "--basedir", "~/nix", "list", "-a"})

	require.NoError(t, root.Execute())

	require.NotNil(t, cfg.Resolved)
	assert.Equal(t, configPath, cfg.ConfigPath)
	assert.Equal(t, "/from/env", cfg.RegistryDir)
	assert.Equal(t, config.SourceEnv, cfg.Resolved.RegistryDir.Source)
	assert.Equal(t, "/from/file", cfg.Resolved.RegistryDir.Shadowed[config.SourceConfig])
	assert.Equal(t, "my-nix", cfg.Resolved.BackendCommand.Value)
	assert.Equal(t, filepath.Join(home, "nix"), cfg.Resolved.BackendBaseDir.Value)
	assert.False(t, cfg.Resolved.DebugEnabled())
}

func TestRoot_ListAgainstRegistry(t *testing.T) {
	isolate(t)
	registryDir := filepath.Join(t.TempDir(), "registry")
	reg := registry.New(registryDir)
	require.NoError(t, reg.Put("0123456789abcdef", &environment.Configuration{Module: "python"}))

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--registry-dir", registryDir, "list", "--all"})

	require.NoError(t, root.Execute())
	assert.Contains(t, stdout.String(), "Id: 0123456789abcdef")
	assert.Contains(t, stdout.String(), "Module: python")
}

func TestRoot_DebugFlag(t *testing.T) {
	isolate(t)
	cfg := &cmdtypes.GlobalConfig{}
	root := newRootCmd(cfg)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--debug", "--registry-dir", t.TempDir(), "list", "-a"})

	require.NoError(t, root.Execute())
	assert.True(t, cfg.Resolved.DebugEnabled())
	assert.True(t, cfg.Backend().Debug)
}

func TestVersionCmd(t *testing.T) {
	isolate(t)
	t.Setenv("DEVENV_BACKEND", "devenv-backend-that-does-not-exist")

	var stdout bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	out := stdout.String()
	assert.Contains(t, out, "devenv:")
	assert.Contains(t, out, "CUE SDK:")
	assert.Contains(t, out, "devenv-backend-that-does-not-exist")
	assert.Contains(t, out, "not found")
}
