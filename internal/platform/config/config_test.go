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
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 1500, cfg.SocrataLimit)
	assert.Equal(t, "9bhg-hcku", cfg.SocrataDataset)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.FirestoreEnabled())
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "port: \"9000\"\nsocrata_limit: 200\nhttp_timeout: 5s\ntimezone: UTC\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("SOCRATA_LIMIT", "")
	t.Setenv("HTTP_TIMEOUT", "")
	t.Setenv("FIREBASE_PROJECT_ID", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9100", cfg.Port, "env overrides file")
	assert.Equal(t, 200, cfg.SocrataLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsBadLimit(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SOCRATA_LIMIT", "lots")

	_, err := Load()
	require.Error(t, err)
}

func TestValidateFirestoreNeedsCreds(t *testing.T) {
	cfg := Defaults()
	cfg.FirebaseProjectID = "proj"
	require.Error(t, cfg.Validate())

	cfg.FirebaseCredsFile = "/tmp/creds.json"
	require.NoError(t, cfg.Validate())
}

func TestValidateTimezone(t *testing.T) {
	cfg := Defaults()
	cfg.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())
}
