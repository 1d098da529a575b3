package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, environmentEnv, listenAddrEnv, logLevelEnv, databasePathEnv, contentDirEnv,
		guardianAPIKeyEnv, ollamaURLEnv, ollamaModelEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.True(t, cfg.AdminRoutesEnabled())
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "newsdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environment: production
database:
  path: /var/lib/newsdesk/db.sqlite
guardian:
  pageDelay: 250ms
ollama:
  model: llama3
  timeout: 5m
scheduler:
  ingestInterval: 1h
  ingestDays: 3
`), 0o644))

	t.Setenv(ollamaModelEnv, "mistral")
	t.Setenv(guardianAPIKeyEnv, "secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/newsdesk/db.sqlite", cfg.Database.Path)
	assert.Equal(t, 250*time.Millisecond, cfg.Guardian.PageDelay)
	assert.Equal(t, 50, cfg.Guardian.PageSize)
	assert.Equal(t, "mistral", cfg.Ollama.Model)
	assert.Equal(t, 5*time.Minute, cfg.Ollama.Timeout)
	assert.Equal(t, "secret", cfg.Guardian.APIKey)
	assert.Equal(t, time.Hour, cfg.Scheduler.IngestInterval)
	assert.False(t, cfg.AdminRoutesEnabled())

	enabled := true
	cfg.Server.AdminEnabled = &enabled
	assert.True(t, cfg.AdminRoutesEnabled())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("guardian:\n  pageSize: 500\n"), 0o644))

	_, err := Load(path)
	require.ErrorContains(t, err, "pageSize")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
