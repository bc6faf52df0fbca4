package install

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/opmodel/devenv/internal/environment"
	oerrors "github.com/opmodel/devenv/internal/errors"
)

// fixture creates a base directory holding a subdirectory, a .nix script,
// a plain file and a package list file.
func fixture(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "existing-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "script.nix"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "existing-file.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(base, "deps.txt"),
		[]byte("# tools\nripgrep\n\n  jq  \n#fd\nfd\n"), 0o644))
	return base
}

func TestClassify_SixWay(t *testing.T) {
	base := fixture(t)
	c := New(base)

	res, err := c.Classify([]string{
		"./existing-dir",
		"https://example.com/x",
		"pkgs.foo",
		"./script.nix",
		"./existing-file.txt",
		"plain-name",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(base, "existing-dir")}, res.Directories)
	assert.Equal(t, []string{"https://example.com/x"}, res.URLs)
	assert.Equal(t, []string{"pkgs.foo"}, res.NixPackages)
	assert.Equal(t, []string{filepath.Join(base, "script.nix")}, res.NixScripts)
	assert.Equal(t, []string{filepath.Join(base, "existing-file.txt")}, res.Files)
	assert.Equal(t, []string{"plain-name"}, res.Packages)
	assert.Equal(t, 6, res.Len())
}

func TestClassify_FirstMatchWins(t *testing.T) {
	base := fixture(t)
	// A directory named like a URL-ish or pkgs. token still classifies as a directory.
	require.NoError(t, os.Mkdir(filepath.Join(base, "pkgs.local"), 0o755))
	// A missing .nix file is not a script; it falls through to packages.
	c := New(base)

	res, err := c.Classify([]string{"pkgs.local", "missing.nix", "pkgs.other.nix"})
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(base, "pkgs.local")}, res.Directories)
	assert.Equal(t, []string{"missing.nix"}, res.Packages)
	assert.Equal(t, []string{"pkgs.other.nix"}, res.NixPackages)
	assert.Empty(t, res.NixScripts)
}

func TestClassify_URLBeforeFile(t *testing.T) {
	c := New(fixture(t))
	res, err := c.Classify([]string{"git+ssh://host/repo.nix"})
	require.NoError(t, err)
	assert.Equal(t, []string{"git+ssh://host/repo.nix"}, res.URLs)
}

func TestClassify_AbsoluteTokensKept(t *testing.T) {
	base := fixture(t)
	abs := filepath.Join(base, "existing-file.txt")

	res, err := New(t.TempDir()).Classify([]string{abs})
	require.NoError(t, err)
	assert.Equal(t, []string{abs}, res.Files)
}

func TestClassify_PreservesOrderWithinBucket(t *testing.T) {
	c := New(fixture(t))
	res, err := c.Classify([]string{"zsh", "pkgs.b", "bash", "pkgs.a", "awk"})
	require.NoError(t, err)

	assert.Equal(t, []string{"zsh", "bash", "awk"}, res.Packages)
	assert.Equal(t, []string{"pkgs.b", "pkgs.a"}, res.NixPackages)
}

func TestClassify_EmptyInput(t *testing.T) {
	res, err := New(t.TempDir()).Classify(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Len())
	assert.NotNil(t, res.Packages, "buckets are empty slices, never nil")
}

func TestClassify_EmptyTokenIsPackage(t *testing.T) {
	res, err := New(fixture(t)).Classify([]string{""})
	require.NoError(t, err)
	assert.Empty(t, res.Directories)
	assert.Empty(t, res.Files)
	assert.Equal(t, []string{""}, res.Packages)
}

func TestClassify_ListFileExpandsToPackages(t *testing.T) {
	base := fixture(t)
	res, err := New(base).Classify([]string{"first", "@deps.txt", "pkgs.x", "last"})
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "ripgrep", "jq", "fd", "last"}, res.Packages)
	assert.Equal(t, []string{"pkgs.x"}, res.NixPackages)
}

func TestClassify_ListFileLinesAreAlwaysPackages(t *testing.T) {
	base := fixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(base, "mixed.txt"),
		[]byte("existing-dir\nhttps://example.com\npkgs.jq\n"), 0o644))

	res, err := New(base).Classify([]string{"@mixed.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"existing-dir", "https://example.com", "pkgs.jq"}, res.Packages)
	assert.Empty(t, res.Directories)
}

func TestClassify_MissingListFileAborts(t *testing.T) {
	c := New(fixture(t))
	res, err := c.Classify([]string{"ripgrep", "@nope.txt"})

	require.Error(t, err)
	assert.Nil(t, res, "no partial classification")
	assert.True(t, errors.Is(err, oerrors.ErrClassification))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestClassify_EmptyListReference(t *testing.T) {
	_, err := New(t.TempDir()).Classify([]string{"@"})
	assert.ErrorIs(t, err, oerrors.ErrClassification)
}

func TestClassify_ListFilesDisabled(t *testing.T) {
	c := &Classifier{BaseDir: fixture(t)}
	res, err := c.Classify([]string{"@deps.txt"})
	require.NoError(t, err)
	assert.Equal(t, []string{"@deps.txt"}, res.Packages)
}

func TestClassify_CustomRules(t *testing.T) {
	c := &Classifier{
		BaseDir: t.TempDir(),
		Rules: []Rule{
			{Category: CategoryURL, Match: func(_ Probe, tok string) bool { return tok == "special" }},
		},
	}
	res, err := c.Classify([]string{"special", "other"})
	require.NoError(t, err)
	assert.Equal(t, []string{"special"}, res.URLs)
	assert.Equal(t, []string{"other"}, res.Packages, "unmatched tokens fall back to packages")
}

func TestResult_Apply(t *testing.T) {
	res := &Result{
		Packages:    []string{"jq"},
		NixPackages: []string{"pkgs.fd"},
		NixScripts:  []string{"/s.nix"},
	}
	cfg := &environment.Configuration{Module: "go"}
	res.Apply(cfg)

	assert.Equal(t, []string{"jq"}, cfg.Install.Packages)
	assert.Equal(t, []string{"pkgs.fd"}, cfg.NixPackages)
	assert.Equal(t, []string{"/s.nix"}, cfg.NixScripts)
}

func TestReadListFile(t *testing.T) {
	base := fixture(t)
	entries, err := ReadListFile(filepath.Join(base, "deps.txt"))
	require.NoError(t, err)
	assert.Equal(t, []string{"ripgrep", "jq", "fd"}, entries)
}

// TestClassify_NoTokenDropped checks that every token lands in exactly one
// bucket and bucket order follows input order.
func TestClassify_NoTokenDropped(t *testing.T) {
	base := fixture(t)
	pool := []string{
		"existing-dir", "https://a/b", "pkgs.x", "script.nix",
		"existing-file.txt", "plain", "other", "pkgs.y",
	}

	rapid.Check(t, func(r *rapid.T) {
		tokens := rapid.SliceOf(rapid.SampledFrom(pool)).Draw(r, "tokens")

		res, err := New(base).Classify(tokens)
		require.NoError(r, err)
		assert.Equal(r, len(tokens), res.Len())

		var wantPackages []string
		for _, tok := range tokens {
			if tok == "plain" || tok == "other" {
				wantPackages = append(wantPackages, tok)
			}
		}
		if wantPackages == nil {
			wantPackages = []string{}
		}
		assert.Equal(r, wantPackages, res.Packages)
	})
}
