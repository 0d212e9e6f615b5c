package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults when no environment is set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, ":8084", cfg.Server.Addr)
		assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, filepath.Join("data", "posts.db"), cfg.Database.DSN)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "http://localhost:8084", cfg.Site.BaseURL)
	})

	t.Run("Should override defaults from environment variables", func(t *testing.T) {
		t.Setenv("PUBLIC_ADDR", "127.0.0.1:9090")
		t.Setenv("SERVER_READ_TIMEOUT", "3s")
		t.Setenv("DB_DRIVER", "file")
		t.Setenv("DATA_DIR", "/tmp/posts")
		t.Setenv("DB_MAX_CONNS", "4")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("LOG_JSON", "true")
		t.Setenv("SITE_BASE_URL", "https://posts.example.com/")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
		assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
		assert.Equal(t, "file", cfg.Database.Driver)
		assert.Equal(t, filepath.Join("/tmp/posts", "posts.json"), cfg.Database.DSN)
		assert.Equal(t, 4, cfg.Database.MaxConns)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.JSON)
		assert.Equal(t, "https://posts.example.com", cfg.Site.BaseURL)
	})

	t.Run("Should read values from an env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("SITE_TITLE=From File\n"), 0o600))
		t.Cleanup(func() { os.Unsetenv("SITE_TITLE") })

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "From File", cfg.Site.Title)
	})

	t.Run("Should skip env files that do not exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		assert.NoError(t, err)
	})

	t.Run("Should reject an unknown driver", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "mongo")

		_, err := Load()
		assert.ErrorContains(t, err, "configuration validation failed")
	})

	t.Run("Should require a dsn for postgres", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")

		_, err := Load()
		assert.ErrorContains(t, err, "database.dsn is required")
	})
}

func TestBaseURLFromAddr(t *testing.T) {
	t.Run("Should derive URLs from listen addresses", func(t *testing.T) {
		cases := map[string]string{
			":8084":                  "http://localhost:8084",
			"0.0.0.0:80":             "http://localhost:80",
			"example.com:8080":       "http://example.com:8080",
			"example.com":            "http://example.com",
			"https://example.com/":   "https://example.com",
			"":                       "",
		}
		for addr, expected := range cases {
			assert.Equal(t, expected, baseURLFromAddr(addr), "addr %q", addr)
		}
	})
}

func TestRefresh(t *testing.T) {
	t.Run("Should recompute cleared derived fields", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		cfg.Server.Addr = ":9999"
		cfg.Site.BaseURL = ""
		cfg.Database.Driver = "file"
		cfg.Database.DSN = ""
		require.NoError(t, cfg.Refresh())

		assert.Equal(t, "http://localhost:9999", cfg.Site.BaseURL)
		assert.Equal(t, filepath.Join("data", "posts.json"), cfg.Database.DSN)
	})

	t.Run("Should fail validation after an invalid change", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)
		cfg.Log.Level = "verbose"
		assert.Error(t, cfg.Refresh())
	})
}
