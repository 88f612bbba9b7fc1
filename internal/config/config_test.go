package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")
	cfg := Default()
	cfg.Display.Currency = "EUR"
	cfg.Display.HistoryLimit = 25
	cfg.Log.Level = "debug"
	cfg.Log.Format = "json"
	cfg.Storage.Path = "data/ledger.json"

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DriverFile, cfg.Storage.Driver)
	assert.Equal(t, "cards.json", cfg.Storage.Path)
	assert.Empty(t, cfg.Storage.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "USD", cfg.Display.Currency)
	assert.Equal(t, 10, cfg.Display.HistoryLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("display:\n  currency: GBP\n"), 0o644))

	cfg, err := LoadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, "GBP", cfg.Display.Currency)
	assert.Equal(t, 10, cfg.Display.HistoryLimit)
	assert.Equal(t, DriverFile, cfg.Storage.Driver)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown driver", "storage:\n  driver: sqlite\n", "unknown storage driver"},
		{"postgres without url", "storage:\n  driver: postgres\n", "database_url"},
		{"file without path", "storage:\n  driver: file\n  path: \"\"\n", "storage.path"},
		{"negative limit", "display:\n  history_limit: -1\n", "history_limit"},
		{"not yaml", "storage: [", "parsing config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(DatabaseURLEnv, "")
			path := filepath.Join(t.TempDir(), FileName)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_DatabaseURLFromEnv(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "postgres://localhost/tally")
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  driver: postgres\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/tally", cfg.Storage.DatabaseURL)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, Default())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "driver: file")
	assert.Contains(t, contents, "path: cards.json")
	assert.Contains(t, contents, "currency: USD")
	assert.Contains(t, contents, "history_limit: 10")
	assert.NotContains(t, contents, "database_url")
}

func TestLedgerPath(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/home/me/money", "cards.json"), cfg.LedgerPath("/home/me/money"))

	cfg.Storage.Path = "/var/lib/tally/cards.json"
	assert.Equal(t, "/var/lib/tally/cards.json", cfg.LedgerPath("/home/me/money"))
}
