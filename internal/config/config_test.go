package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/pokrok/internal/constants"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POKROK_DB", "POKROK_ADDR", "POKROK_REDIS_ADDR", "POKROK_SERVER_URL",
		"POKROK_TIMEZONE", "POKROK_POLL_INTERVAL", "POKROK_DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, constants.DefaultDBPath, cfg.Database.Path)
	assert.Equal(t, constants.DefaultListenAddr, cfg.Server.Addr)
	assert.Equal(t, constants.DefaultPollInterval, cfg.PollInterval())
	assert.Equal(t, constants.DefaultCacheTTL, cfg.CacheTTL())
	assert.False(t, cfg.UsesPostgres())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileGivesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestSaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.Path = "/tmp/pokrok-test.db"
	cfg.Server.RedisAddr = "localhost:6379"
	cfg.Client.PollInterval = "15s"
	cfg.Timezone = "Europe/Prague"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/pokrok-test.db", loaded.Database.Path)
	assert.Equal(t, "localhost:6379", loaded.Server.RedisAddr)
	assert.Equal(t, 15*time.Second, loaded.PollInterval())
	assert.Equal(t, "Europe/Prague", loaded.Timezone)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: 0.0.0.0:9000\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, constants.DefaultCacheTTL.String(), cfg.Server.CacheTTL)
	assert.Equal(t, constants.DefaultServerURL, cfg.Client.ServerURL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKROK_ADDR", ":9999")
	t.Setenv("POKROK_REDIS_ADDR", "redis:6379")
	t.Setenv("POKROK_SERVER_URL", "http://pokrok.local")
	t.Setenv("POKROK_TIMEZONE", "UTC")
	t.Setenv("POKROK_POLL_INTERVAL", "5s")
	t.Setenv("POKROK_DEBUG", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "redis:6379", cfg.Server.RedisAddr)
	assert.Equal(t, "http://pokrok.local", cfg.Client.ServerURL)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, 5*time.Second, cfg.PollInterval())
	assert.True(t, cfg.Logging.Debug)
}

func TestLoad_DBOverrideDetectsPostgres(t *testing.T) {
	clearEnv(t)
	t.Setenv("POKROK_DB", "postgres://me@localhost/pokrok")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.UsesPostgres())
	assert.Equal(t, "postgres://me@localhost/pokrok", cfg.Database.Connection)

	t.Setenv("POKROK_DB", "/data/pokrok.db")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.UsesPostgres())
	assert.Equal(t, "/data/pokrok.db", cfg.Database.Path)
	assert.Equal(t, "/data", cfg.ConfigDir())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
	}{
		{name: "bad yaml", content: "server: [unclosed"},
		{name: "bad poll interval", content: "client:\n  poll_interval: soon\n"},
		{name: "negative ttl", content: "server:\n  cache_ttl: -5s\n"},
		{name: "bad timezone env", env: map[string]string{"POKROK_TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config/pokrok/pokrok.db"), ExpandPath("~/.config/pokrok/pokrok.db"))
	assert.Equal(t, "/abs/path.db", ExpandPath("/abs/path.db"))
	assert.Equal(t, "relative.db", ExpandPath("relative.db"))
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgresql://u@h/db"))
	assert.True(t, IsPostgres("host=localhost dbname=pokrok"))
	assert.False(t, IsPostgres("~/.config/pokrok/pokrok.db"))
}
