package query_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
	"github.com/opmodel/devenv/internal/query"
	"github.com/opmodel/devenv/internal/registry"
)

const (
	idPython = "0000000000000001"
	idGo     = "0000000000000002"
	idPyData = "0000000000000003"
)

func makeSource() query.Source {
	all := map[string]*environment.Configuration{
		idPython: {
			Module:  "python",
			Package: "",
			Install: environment.Install{Packages: []string{"requests"}},
		},
		idGo: {
			Module:  "go",
			Package: "1.22",
		},
		idPyData: {
			Module:  "python",
			Package: "3.12",
			Install: environment.Install{Packages: []string{"numpy", "pandas", "scipy"}},
		},
	}
	return query.SourceFunc(func() (map[string]*environment.Configuration, error) {
		return all, nil
	})
}

func TestSearch_EmptyPredicates(t *testing.T) {
	_, err := query.Search(makeSource(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrEmptyQuery))
	assert.Equal(t, oerrors.ExitValidationError, oerrors.ExitCodeFromError(err))
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name  string
		preds map[string]interface{}
		want  []string
	}{
		{
			name:  "single field",
			preds: map[string]interface{}{"module": "python"},
			want:  []string{idPython, idPyData},
		},
		{
			name:  "and semantics",
			preds: map[string]interface{}{"module": "python", "package": "3.12"},
			want:  []string{idPyData},
		},
		{
			name:  "empty package matches default variant",
			preds: map[string]interface{}{"package": ""},
			want:  []string{idPython},
		},
		{
			name:  "case sensitive",
			preds: map[string]interface{}{"module": "Python"},
			want:  []string{},
		},
		{
			name:  "no substring match",
			preds: map[string]interface{}{"module": "py"},
			want:  []string{},
		},
		{
			name:  "missing field fails",
			preds: map[string]interface{}{"flavour": "python"},
			want:  []string{},
		},
		{
			name:  "dotted path with list value",
			preds: map[string]interface{}{"install.packages": []string{"numpy", "pandas", "scipy"}},
			want:  []string{idPyData},
		},
		{
			name:  "list order matters",
			preds: map[string]interface{}{"install.packages": []string{"scipy", "pandas", "numpy"}},
			want:  []string{},
		},
		{
			name:  "injected id is queryable",
			preds: map[string]interface{}{"id": idGo},
			want:  []string{idGo},
		},
		{
			name:  "path through a scalar fails",
			preds: map[string]interface{}{"module.name": "go"},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := query.Search(makeSource(), tt.preds)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.IDs())
		})
	}
}

func TestSearch_SourceError(t *testing.T) {
	boom := errors.New("boom")
	src := query.SourceFunc(func() (map[string]*environment.Configuration, error) {
		return nil, boom
	})

	_, err := query.Search(src, map[string]interface{}{"module": "go"})
	assert.ErrorIs(t, err, boom)
}

func TestSearch_OverRegistry(t *testing.T) {
	reg := registry.New(filepath.Join(t.TempDir(), "registry"))
	require.NoError(t, reg.Put(idPython, &environment.Configuration{Module: "python"}))
	require.NoError(t, reg.Put(idGo, &environment.Configuration{Module: "go"}))

	got, err := query.Search(reg, map[string]interface{}{"module": "go"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, idGo, got[idGo].ID)
}

func TestResult_Sorted(t *testing.T) {
	r := query.Result{
		"b000000000000000": {Module: "b"},
		"a000000000000000": {Module: "a"},
	}
	sorted := r.Sorted()
	require.Len(t, sorted, 2)
	assert.Equal(t, "a", sorted[0].Module)
	assert.Equal(t, "b", sorted[1].Module)
}

func TestParsePredicates(t *testing.T) {
	preds, err := query.ParsePredicates([]string{
		"module=python",
		"variables=[]",
		"install.packages=[\"numpy\"]",
		"package=a=b",
		"note=[not json",
		"count=3",
		"flag=true",
	})
	require.NoError(t, err)
	assert.Equal(t, "python", preds["module"])
	assert.Equal(t, []interface{}{}, preds["variables"])
	assert.Equal(t, []interface{}{"numpy"}, preds["install.packages"])
	assert.Equal(t, "a=b", preds["package"])
	assert.Equal(t, "[not json", preds["note"])
	assert.Equal(t, "3", preds["count"], "scalars stay strings")
	assert.Equal(t, "true", preds["flag"])
}

func TestParsePredicates_Invalid(t *testing.T) {
	for _, opt := range []string{"module", "=python"} {
		_, err := query.ParsePredicates([]string{opt})
		require.Error(t, err, opt)
		assert.True(t, errors.Is(err, oerrors.ErrValidation))
	}
}
