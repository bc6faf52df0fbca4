package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/devenv/internal/identity"
)

func TestLookupByDirectory_MissingRoot(t *testing.T) {
	r := newTestRegistry(t)

	ids, err := r.LookupByDirectory(t.TempDir())
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestRegisterDirectory_AppendsInOrder(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	require.NoError(t, r.RegisterDirectory(dir, idA))
	require.NoError(t, r.RegisterDirectory(dir, idB))
	require.NoError(t, r.RegisterDirectory(dir, idC))

	ids, err := r.LookupByDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idB, idC}, ids)
}

func TestRegisterDirectory_ReRegisterMovesToEnd(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	require.NoError(t, r.RegisterDirectory(dir, idA))
	require.NoError(t, r.RegisterDirectory(dir, idB))
	require.NoError(t, r.RegisterDirectory(dir, idA))

	ids, err := r.LookupByDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{idB, idA}, ids)
}

func TestRegisterDirectory_KeyedByDirectoryIdentity(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	require.NoError(t, r.RegisterDirectory(dir, idA))

	path := filepath.Join(r.Root(), "dirs", identity.Of(dir))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, idA+"\n", string(data))
}

func TestRegisterDirectory_CanonicalizesPath(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	require.NoError(t, r.RegisterDirectory(dir+"/./", idA))

	ids, err := r.LookupByDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{idA}, ids)
}

func TestRegisterDirectory_DirectoriesAreIndependent(t *testing.T) {
	r := newTestRegistry(t)
	dirA := t.TempDir()
	dirB := t.TempDir()

	require.NoError(t, r.RegisterDirectory(dirA, idA))
	require.NoError(t, r.RegisterDirectory(dirB, idB))

	ids, err := r.LookupByDirectory(dirA)
	require.NoError(t, err)
	assert.Equal(t, []string{idA}, ids)
}

func TestLookupByDirectory_IgnoresBlankLines(t *testing.T) {
	r := newTestRegistry(t)
	dir := t.TempDir()

	path := filepath.Join(r.Root(), "dirs", identity.Of(dir))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("\n"+idA+"\n\n  \n"+idB+"\n"), 0o644))

	ids, err := r.LookupByDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{idA, idB}, ids)
}

func TestRegisterDirectory_InvalidIdentity(t *testing.T) {
	r := newTestRegistry(t)
	assert.Error(t, r.RegisterDirectory(t.TempDir(), "XYZ"))
}

func TestIndexed(t *testing.T) {
	r := newTestRegistry(t)

	indexed, err := r.Indexed(idA)
	require.NoError(t, err)
	assert.False(t, indexed, "missing index directory")

	require.NoError(t, r.RegisterDirectory(t.TempDir(), idA))

	indexed, err = r.Indexed(idA)
	require.NoError(t, err)
	assert.True(t, indexed)

	indexed, err = r.Indexed(idB)
	require.NoError(t, err)
	assert.False(t, indexed)
}
