package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"go", "Rust", "python"}, Unique([]string{"go", "Rust", "GO", "rust", "python", "go"}))
	assert.Empty(t, Unique(nil))
}

func TestSeenSetExclude(t *testing.T) {
	s := NewSeenSet("Go", "")
	assert.False(t, s.First("go"))
	assert.True(t, s.First(""))
	assert.True(t, s.First("rust"))
	assert.False(t, s.First("RUST"))
}

func TestSaveAndParseTOML(t *testing.T) {
	type section struct {
		Limit int    `toml:"limit"`
		Name  string `toml:"name"`
		On    bool   `toml:"on"`
	}
	type doc struct {
		Server section `toml:"server"`
	}

	path := filepath.Join(t.TempDir(), "c.toml")
	require.NoError(t, SaveTOMLFile(doc{Server: section{Limit: 7, Name: "x", On: true}}, path))
	assert.True(t, FileExists(path))

	var got doc
	require.NoError(t, LoadTOMLFile(path, &got))
	assert.Equal(t, 7, got.Server.Limit)

	raw, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	sec, ok := ExtractSection(raw, "server")
	require.True(t, ok)

	n, ok := ExtractInt64(sec, "limit")
	assert.True(t, ok)
	assert.Equal(t, 7, n)
	s, ok := ExtractString(sec, "name")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
	b, ok := ExtractBool(sec, "on")
	assert.True(t, ok)
	assert.True(t, b)

	_, ok = ExtractInt64(sec, "name")
	assert.False(t, ok)
	_, ok = ExtractSection(raw, "missing")
	assert.False(t, ok)
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	res := CheckDirStatus(dir)
	assert.True(t, res.Exists)
	assert.True(t, res.Writable)
	assert.NoError(t, res.Error)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "write probe must be removed")
}

func TestConfigDirCandidatesPrefersXDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dirs := ConfigDirCandidates("tagcomplete")
	require.NotEmpty(t, dirs)
	assert.Equal(t, filepath.Join(xdg, "tagcomplete"), dirs[0])

	dir, err := WritableConfigDir("tagcomplete")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "tagcomplete"), dir)
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, ":memory:", ResolvePath("/etc", ":memory:"))
	assert.Equal(t, "", ResolvePath("/etc", ""))
	assert.Equal(t, "/var/tags.db", ResolvePath("/etc", "/var/tags.db"))
	assert.Equal(t, filepath.Join("/etc", "tags.db"), ResolvePath("/etc", "tags.db"))
}
