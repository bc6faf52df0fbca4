package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigYAML_RoundTrips(t *testing.T) {
	clearDevenvEnv(t)

	data, err := DefaultConfigYAML()
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Backend executable (env: DEVENV_BACKEND).")
	assert.Contains(t, string(data), "timeout: 0s")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := NewLoader().Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().RegistryDir, cfg.RegistryDir)
	assert.Equal(t, DefaultConfig().Backend, cfg.Backend)
	require.NoError(t, ValidateFile(path))
}

func TestRenderYAML_Timeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.Timeout = 90 * time.Second

	data, err := RenderYAML(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 1m30s")
}
