package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullYAML = `
server:
  host: "127.0.0.1"
  port: 8081
  read_timeout: 5s
  write_timeout: 45s
  shutdown_timeout: 20s
  max_upload_size_mb: 50
processing:
  task_timeout: 90s
  cache_ttl: 30m
  task_ttl: 3h
  cleanup_interval: 5m
analysis:
  media_placeholder: "<Медиафайл отсутствует>"
  top_users: 10
  top_words: 30
storage:
  backend: sqlite
  sqlite_path: "/var/lib/analyzer/cache.db"
events:
  nats_url: "nats://localhost:4222"
  subject: "chats.parsed"
logging:
  level: "debug"
  format: "text"
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoadFromYAML(t *testing.T) {
	t.Run("success with full config", func(t *testing.T) {
		path := createTempConfigFile(t, fullYAML)
		cfg := defaultConfig()
		err := loadFromYAML(path, cfg)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 8081, cfg.Server.Port)
		assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
		assert.Equal(t, 20*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, int64(50), cfg.Server.MaxUploadSizeMB)
		assert.Equal(t, "127.0.0.1:8081", cfg.Address())

		assert.Equal(t, 90*time.Second, cfg.Processing.TaskTimeout)
		assert.Equal(t, 30*time.Minute, cfg.Processing.CacheTTL)
		assert.Equal(t, 3*time.Hour, cfg.Processing.TaskTTL)
		assert.Equal(t, 5*time.Minute, cfg.Processing.CleanupInterval)

		assert.Equal(t, "<Медиафайл отсутствует>", cfg.Analysis.MediaPlaceholder)
		assert.Equal(t, 10, cfg.Analysis.TopUsers)
		assert.Equal(t, 30, cfg.Analysis.TopWords)

		assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
		assert.Equal(t, "/var/lib/analyzer/cache.db", cfg.Storage.SQLitePath)
		assert.Equal(t, "nats://localhost:4222", cfg.Events.NATSURL)
		assert.Equal(t, "chats.parsed", cfg.Events.Subject)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "text", cfg.Logging.Format)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("partial config keeps defaults", func(t *testing.T) {
		path := createTempConfigFile(t, "server:\n  port: 9090\n")
		cfg := defaultConfig()
		require.NoError(t, loadFromYAML(path, cfg))

		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, DefaultServerHost, cfg.Server.Host)
		assert.Equal(t, DefaultCacheTTL, cfg.Processing.CacheTTL)
		assert.Equal(t, DefaultMediaPlaceholder, cfg.Analysis.MediaPlaceholder)
		assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	})

	t.Run("file not found is not an error", func(t *testing.T) {
		cfg := defaultConfig()
		err := loadFromYAML(filepath.Join(t.TempDir(), "non_existent_file.yml"), cfg)
		assert.NoError(t, err)
		assert.Equal(t, defaultConfig(), cfg)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := createTempConfigFile(t, "invalid yaml: {")
		cfg := defaultConfig()
		err := loadFromYAML(path, cfg)
		assert.Error(t, err)
	})
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Run("env overrides yaml", func(t *testing.T) {
		path := createTempConfigFile(t, fullYAML)
		t.Setenv("SERVER_PORT", "7070")
		t.Setenv("CACHE_TTL", "2h")
		t.Setenv("STORAGE_BACKEND", "memory")
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 7070, cfg.Server.Port)
		assert.Equal(t, 2*time.Hour, cfg.Processing.CacheTTL)
		assert.Equal(t, StorageMemory, cfg.Storage.Backend)
		assert.Equal(t, "warn", cfg.Logging.Level)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	})

	t.Run("invalid port in env", func(t *testing.T) {
		t.Setenv("SERVER_PORT", "eighty")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})

	t.Run("invalid duration in env", func(t *testing.T) {
		t.Setenv("TASK_TIMEOUT", "soon")

		_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutator func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"no task timeout", func(c *Config) { c.Processing.TaskTimeout = 0 }, false},
		{"sqlite backend", func(c *Config) { c.Storage.Backend = StorageSQLite }, false},
		{"invalid port", func(c *Config) { c.Server.Port = 0 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"invalid shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = 0 }, true},
		{"invalid upload size", func(c *Config) { c.Server.MaxUploadSizeMB = 0 }, true},
		{"invalid task_timeout", func(c *Config) { c.Processing.TaskTimeout = -1 }, true},
		{"invalid cache_ttl", func(c *Config) { c.Processing.CacheTTL = 0 }, true},
		{"invalid task_ttl", func(c *Config) { c.Processing.TaskTTL = 0 }, true},
		{"invalid cleanup interval", func(c *Config) { c.Processing.CleanupInterval = 0 }, true},
		{"empty media placeholder", func(c *Config) { c.Analysis.MediaPlaceholder = "" }, true},
		{"invalid top users", func(c *Config) { c.Analysis.TopUsers = 0 }, true},
		{"unknown storage", func(c *Config) { c.Storage.Backend = "postgres" }, true},
		{"sqlite without path", func(c *Config) {
			c.Storage.Backend = StorageSQLite
			c.Storage.SQLitePath = ""
		}, true},
		{"nats without subject", func(c *Config) {
			c.Events.NATSURL = "nats://localhost:4222"
			c.Events.Subject = ""
		}, true},
		{"invalid logging level", func(c *Config) { c.Logging.Level = "wrong" }, true},
		{"invalid logging format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutator(cfg)
			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
