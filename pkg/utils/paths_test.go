package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAndEnsureDBPath_CreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "dir", "notes.db")

	got, err := ResolveAndEnsureDBPath(target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveAndEnsureDBPath_Memory(t *testing.T) {
	got, err := ResolveAndEnsureDBPath(":memory:")
	require.NoError(t, err)
	assert.Equal(t, ":memory:", got)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/notes/geonote.db")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "notes", "geonote.db"), got)

	got, err = ExpandHome("/abs/path.db")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path.db", got)
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, "geonote.db", filepath.Base(GetDefaultDBPathOnly()))
	assert.Equal(t, "images", filepath.Base(GetDefaultMediaDir()))
	assert.Equal(t, "config.yaml", filepath.Base(GetDefaultConfigPath()))
}
