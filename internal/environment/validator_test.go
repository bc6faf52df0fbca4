package environment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/devenv/internal/errors"
)

func newTestValidator(t *testing.T) *Validator {
	t.Helper()
	v, err := NewValidator()
	require.NoError(t, err)
	return v
}

func TestValidator_AcceptsValidConfig(t *testing.T) {
	v := newTestValidator(t)
	assert.NoError(t, v.Validate(sampleConfig()))
}

func TestValidator_AcceptsMinimalConfig(t *testing.T) {
	v := newTestValidator(t)
	assert.NoError(t, v.Validate(&Configuration{Module: "go"}))
}

func TestValidator_AcceptsInjectedID(t *testing.T) {
	v := newTestValidator(t)
	cfg := sampleConfig()
	cfg.ID = "0123456789abcdef"
	assert.NoError(t, v.Validate(cfg))
}

func TestValidator_AcceptsAnyVariableName(t *testing.T) {
	v := newTestValidator(t)
	cfg := sampleConfig()
	cfg.Variables = []Variable{{Name: "my-var", Value: "1"}, {Name: "1ST", Value: "2"}}
	assert.NoError(t, v.Validate(cfg))
}

func TestValidator_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Configuration)
	}{
		{name: "empty module", mutate: func(c *Configuration) { c.Module = "" }},
		{name: "module with spaces", mutate: func(c *Configuration) { c.Module = "py thon" }},
		{name: "relative directory", mutate: func(c *Configuration) { c.Install.Directories = []string{"lib"} }},
		{name: "url without scheme", mutate: func(c *Configuration) { c.Install.URLs = []string{"example.com"} }},
		{name: "nix package without prefix", mutate: func(c *Configuration) { c.NixPackages = []string{"jq"} }},
		{name: "nix script not .nix", mutate: func(c *Configuration) { c.NixScripts = []string{"/src/shell.sh"} }},
		{name: "relative src", mutate: func(c *Configuration) { c.Srcs = []string{"src"} }},
		{name: "empty variable name", mutate: func(c *Configuration) { c.Variables = []Variable{{Name: "", Value: "x"}} }},
		{name: "malformed id", mutate: func(c *Configuration) { c.ID = "nothex" }},
	}

	v := newTestValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := sampleConfig()
			tt.mutate(cfg)
			err := v.Validate(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrValidation))
		})
	}
}

func TestValidator_ValidateJSON(t *testing.T) {
	v := newTestValidator(t)

	t.Run("unknown field rejected", func(t *testing.T) {
		err := v.ValidateJSON("x.json", []byte(`{"module":"go","package":"","install":{"packages":[],"directories":[],"urls":[],"files":[]},"nixPackages":[],"nixScripts":[],"srcs":[],"variables":[],"extra":1}`))
		assert.ErrorIs(t, err, oerrors.ErrValidation)
	})

	t.Run("missing package rejected", func(t *testing.T) {
		err := v.ValidateJSON("x.json", []byte(`{"module":"go"}`))
		assert.ErrorIs(t, err, oerrors.ErrValidation)
	})

	t.Run("not json", func(t *testing.T) {
		err := v.ValidateJSON("x.json", []byte(`{module`))
		var detail *oerrors.DetailError
		require.ErrorAs(t, err, &detail)
		assert.Equal(t, "x.json", detail.Location)
	})
}
