package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("INKWELL_CONFIG", "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, time.Hour, cfg.Server.SessionLifetime)
	assert.Equal(t, "inkwell.db", cfg.Database.Path)
	assert.False(t, cfg.Debug.Enabled)
	assert.Equal(t, "editor://open/?file=%file&line=%line", cfg.Debug.Editor)
	assert.Equal(t, "roles", cfg.Auth.RolesClaim)
	assert.Equal(t, []string{"editor"}, cfg.Auth.DevRoles)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "inkwell.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  addr: ":9000"
debug:
  enabled: true
  skip_prefixes:
    - github.com/blogem/inkwell/repositories.
database:
  path: /tmp/from-file.db
`), 0o644))

	envFile := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("INKWELL_LOG_LEVEL=debug\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("INKWELL_LOG_LEVEL") })

	t.Setenv("INKWELL_DATABASE_PATH", "/tmp/from-env.db")

	cfg, err := Load(file, envFile)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Debug.Enabled)
	assert.Equal(t, []string{"github.com/blogem/inkwell/repositories."}, cfg.Debug.SkipPrefixes)
	assert.Equal(t, "/tmp/from-env.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Config{
		Server:   ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{Path: "x.db"},
		Auth:     AuthConfig{Enabled: true},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.issuer is required")
	assert.Contains(t, err.Error(), "auth.client_id is required")

	cfg.Auth = AuthConfig{DevUser: "dev@localhost"}
	assert.NoError(t, cfg.Validate())
}
