package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, 5000, cfg.Server.HTTP.Port)
	assert.Equal(t, "postgres", cfg.Databases.Driver)
	assert.Equal(t, 10, cfg.Databases.Postgres.MaxOpenConns)
	assert.Equal(t, []string{"*"}, cfg.Cors.Origins)
	assert.Equal(t, "log", cfg.Outbox.Broker)
	assert.Equal(t, 24*time.Hour, cfg.AccessExpiry())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	content := `{
  "app": {"name": "laundry-test", "env": "prod"},
  "server": {"http": {"port": 8081}},
  "security": {"jwt_access_secret": "from-file"}
}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs.json"), []byte(content), 0o644))

	t.Setenv("GARAADKA_SERVER_HTTP_PORT", "9090")
	t.Setenv("GARAADKA_OUTBOX_BROKER", "kafka")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "laundry-test", cfg.App.Name)
	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "from-file", cfg.Security.JWTAccessSecret)
	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "kafka", cfg.Outbox.Broker)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		cfg, err := Load(t.TempDir())
		require.NoError(t, err)
		cfg.Security.JWTAccessSecret = "secret"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, base().Validate())
	})

	t.Run("missing secret", func(t *testing.T) {
		cfg := base()
		cfg.Security.JWTAccessSecret = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad env", func(t *testing.T) {
		cfg := base()
		cfg.App.Env = "staging"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad driver", func(t *testing.T) {
		cfg := base()
		cfg.Databases.Driver = "mysql"
		assert.Error(t, cfg.Validate())
	})

	t.Run("bad broker", func(t *testing.T) {
		cfg := base()
		cfg.Outbox.Broker = "nats"
		assert.Error(t, cfg.Validate())
	})
}
