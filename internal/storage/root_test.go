package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRoot(t *testing.T) {
	t.Run("env override wins", func(t *testing.T) {
		t.Setenv(EnvHome, "/tmp/custom")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

		r, err := DefaultRoot()
		require.NoError(t, err)
		assert.Equal(t, "/tmp/custom", r.Dir())
	})

	t.Run("xdg config home", func(t *testing.T) {
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

		r, err := DefaultRoot()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join("/tmp/xdg", "ticketmate"), r.Dir())
	})

	t.Run("home fallback", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv(EnvHome, "")
		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", home)

		r, err := DefaultRoot()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".ticketmate"), r.Dir())
	})
}

func TestRoot_Layout(t *testing.T) {
	dir := t.TempDir()
	r := NewRoot(dir)

	require.NoError(t, r.Ensure())

	for _, sub := range []string{r.DraftsDir(), r.TeamsDir(), r.CacheDir(), r.LogsDir()} {
		info, err := os.Stat(sub)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
	assert.Equal(t, filepath.Join(dir, "config.json"), r.ConfigFile())
	assert.Equal(t, filepath.Join(dir, "logs", "ticketmate.log"), r.LogFile())
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "record.json")

	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":1}`), 0644))
	require.NoError(t, WriteFileAtomic(path, []byte(`{"v":2}`), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
