package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_OverlaysPresentKeys(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"api_base_url":    "https://auth.example.org",
		"request_timeout": "10s",
		"output":          "yaml",
	})

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://auth.example.org", cfg.APIBaseURL)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "yaml", cfg.Output)
	assert.Equal(t, "/api/auth", cfg.BasePath, "absent keys keep defaults")
	assert.Equal(t, "session.db", cfg.StoragePath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func Test_parseJson_AllKeys(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"api_base_url":    "127.0.0.1:9000",
		"base_path":       "/v2/auth",
		"storage_path":    "/tmp/x/session.db",
		"request_timeout": 2_000_000_000,
		"log_level":       "debug",
		"output":          "json",
	})

	cfg := &Config{}
	require.NoError(t, parseJson(cfg, path))
	assert.Equal(t, Config{
		APIBaseURL:     "127.0.0.1:9000",
		BasePath:       "/v2/auth",
		StoragePath:    "/tmp/x/session.db",
		RequestTimeout: 2 * time.Second,
		LogLevel:       "debug",
		Output:         "json",
	}, *cfg)
}

func Test_parseJson_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read config")
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		_, err := LoadConfig(bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("bad duration", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{"request_timeout": "soon"})
		require.Error(t, parseJson(&Config{}, path))
	})
}
