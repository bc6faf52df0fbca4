package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/devenv/internal/errors"
)

func TestDiff_Identical(t *testing.T) {
	e := newTestEnv(t)
	a := e.mustBuild(t, "python", "-i", "numpy")
	b := e.mustBuild(t, "python", "-i", "numpy")

	out, err := e.run(NewDiffCmd, a, b)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestDiff_ReportsChanges(t *testing.T) {
	e := newTestEnv(t)
	a := e.mustBuild(t, "python", "-i", "numpy")
	e.mustBuild(t, "go", "-n", "tools")

	out, err := e.run(NewDiffCmd, a, "tools", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "module")
	assert.Contains(t, out, "python")
	assert.Contains(t, out, "go")
}

func TestDiff_Missing(t *testing.T) {
	e := newTestEnv(t)
	a := e.mustBuild(t, "python")

	_, err := e.run(NewDiffCmd, a, "nope")
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitNotFound, exitCode(err))
}
