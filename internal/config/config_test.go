package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(kv map[string]string) func(string) string {
	return func(k string) string { return kv[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load("", env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commonapply.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9000
shutdown_timeout = "3s"

[database]
driver = "memory"

[log]
level = "debug"
format = "json"

[session]
idle_timeout = "5m"
`), 0o600))

	cfg, err := load(path, env(map[string]string{"PORT": "9100", "LOG_LEVEL": "warn"}))
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTimeout)
	assert.Equal(t, 12*time.Hour, cfg.Session.MaxAge, "unset keys keep their defaults")
}

func TestLoadErrors(t *testing.T) {
	_, err := load(filepath.Join(t.TempDir(), "missing.toml"), env(nil))
	assert.Error(t, err)

	_, err = load("", env(map[string]string{"PORT": "http"}))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[database]\ndriver = \"postgres\"\n"), 0o600))
	_, err = load(bad, env(nil))
	assert.ErrorContains(t, err, "postgres")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Database.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverMemory
	assert.NoError(t, cfg.Validate())

	cfg.Bus.BufferSize = 0
	assert.Error(t, cfg.Validate())
}
