package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/devenv/internal/errors"
)

func TestModules_Sorted(t *testing.T) {
	e := newTestEnv(t)
	e.backend.stdout = "rust:/opt/modules/rust.nix\npython:/opt/modules/python.nix\n"

	out, err := e.run(NewModulesCmd)
	require.NoError(t, err)
	assert.Equal(t,
		" - python (/opt/modules/python.nix)\n - rust (/opt/modules/rust.nix)\n", out)
	assert.Equal(t, []string{"modules"}, e.backend.actions())
}

func TestModules_BackendFailure(t *testing.T) {
	e := newTestEnv(t)
	e.backend.failOn = "modules"

	_, err := e.run(NewModulesCmd)
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitBackendFailure, exitCode(err))
}
