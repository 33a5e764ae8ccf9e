package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	again, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadConfigKeepsMissingDefaults(t *testing.T) {
	path := writeConfig(t, `
[server]
limit = 5

[field]
transport = "ipc"
min_length = 2
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, 5, cfg.Server.Limit)
	assert.Equal(t, def.Server.Addr, cfg.Server.Addr)
	assert.Equal(t, "ipc", cfg.Field.Transport)
	assert.Equal(t, 2, cfg.Field.MinLength)
	assert.Equal(t, def.Field.Endpoint, cfg.Field.Endpoint)
	assert.Equal(t, def.Store, cfg.Store)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// limit has the wrong type, so the typed decode fails.
	path := writeConfig(t, `
[server]
limit = "many"
addr = ":9000"

[field]
auto_focus = true
timeout_ms = 500
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 15, cfg.Server.Limit)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Field.AutoFocus)
	assert.Equal(t, 500*time.Millisecond, cfg.Field.Timeout())
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeConfig(t, "this is [not toml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSanitize(t *testing.T) {
	path := writeConfig(t, `
[server]
limit = 0
order = "random"

[field]
transport = "carrier-pigeon"
min_length = -3
timeout_ms = 0
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Server.Limit, cfg.Server.Limit)
	assert.Equal(t, "name", cfg.Server.Order)
	assert.Equal(t, "http", cfg.Field.Transport)
	assert.Equal(t, 0, cfg.Field.MinLength)
	assert.Equal(t, def.Field.TimeoutMS, cfg.Field.TimeoutMS)
}

func TestLoadConfigWithPriority(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	custom := writeConfig(t, "[server]\nlimit = 3\n")
	cfg, used, err := LoadConfigWithPriority(custom)
	require.NoError(t, err)
	assert.Equal(t, custom, used)
	assert.Equal(t, 3, cfg.Server.Limit)

	cfg, used, err = LoadConfigWithPriority(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(os.Getenv("XDG_CONFIG_HOME"), AppName, "config.toml"), used)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, used)
}

func TestUpdatePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, err := InitConfig(path)
	require.NoError(t, err)

	minLength := 2
	autoFocus := true
	require.NoError(t, cfg.Update(path, &minLength, &autoFocus, nil))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Field.MinLength)
	assert.True(t, loaded.Field.AutoFocus)
	assert.Equal(t, DefaultConfig().Field.Endpoint, loaded.Field.Endpoint)
}

func TestStorePath(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "tags.db", cfg.StorePath(""))
	assert.Equal(t, filepath.Join("/etc/tagcomplete", "tags.db"), cfg.StorePath("/etc/tagcomplete/config.toml"))

	cfg.Store.Path = ":memory:"
	assert.Equal(t, ":memory:", cfg.StorePath("/etc/tagcomplete/config.toml"))
}

func TestActiveConfigPath(t *testing.T) {
	assert.Equal(t, "builtin defaults", GetActiveConfigPath(""))
	assert.True(t, filepath.IsAbs(GetActiveConfigPath("config.toml")))
}
