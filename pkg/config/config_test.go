package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
db_path: /data/notes.db
wal: false
watch_debounce: 200ms
log:
  level: debug
device:
  permissions: location
`)

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/data/notes.db", cfg.DBPath)
	assert.False(t, cfg.WAL)
	assert.Equal(t, "NORMAL", cfg.Sync, "unset keys keep their defaults")
	assert.Equal(t, 200*time.Millisecond, cfg.WatchDebounce)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "location", cfg.Device.Permissions)
	assert.Equal(t, Default().Device.CameraCommand, cfg.Device.CameraCommand)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", "db_path: /from/file.db\nsync: FULL\n")

	t.Setenv("GEONOTE_DB", "/from/env.db")
	t.Setenv("GEONOTE_WAL", "false")
	t.Setenv("GEONOTE_LOCATION_CMD", "my-locator --once")

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/from/env.db", cfg.DBPath)
	assert.Equal(t, "FULL", cfg.Sync)
	assert.False(t, cfg.WAL)
	assert.Equal(t, []string{"my-locator", "--once"}, cfg.Device.LocationCommand)
}

func TestLoad_DotEnvDoesNotOverrideEnvironment(t *testing.T) {
	dir := t.TempDir()
	envFile := writeFile(t, dir, ".env", "GEONOTE_SYNC=EXTRA\nGEONOTE_MEDIA_DIR=/from/dotenv\n")
	t.Setenv("GEONOTE_SYNC", "FULL")
	// Registered so t cleans up the value godotenv sets.
	t.Setenv("GEONOTE_MEDIA_DIR", "")
	require.NoError(t, os.Unsetenv("GEONOTE_MEDIA_DIR"))

	cfg, err := Load(writeFile(t, dir, "config.yaml", ""), envFile)
	require.NoError(t, err)

	assert.Equal(t, "FULL", cfg.Sync)
	assert.Equal(t, "/from/dotenv", cfg.MediaDir)
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := t.TempDir()
	missingEnv := filepath.Join(dir, "missing.env")

	_, err := Load(filepath.Join(dir, "nope.yaml"), missingEnv)
	assert.Error(t, err, "an explicit config path must exist")

	_, err = Load(writeFile(t, dir, "bad.yaml", "wal: [oops"), missingEnv)
	assert.ErrorContains(t, err, "failed to parse config")

	t.Setenv("GEONOTE_WAL", "maybe")
	_, err = Load(writeFile(t, dir, "ok.yaml", ""), missingEnv)
	assert.ErrorContains(t, err, "invalid GEONOTE_WAL")
}
