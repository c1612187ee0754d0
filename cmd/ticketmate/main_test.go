package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/storage"
)

func TestResolveRoot(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "separate value", args: []string{"ticketmate", "--root", "/tmp/tm", "new"}, want: "/tmp/tm"},
		{name: "equals form", args: []string{"ticketmate", "--root=/tmp/tm2", "drafts", "list"}, want: "/tmp/tm2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root, err := resolveRoot(tt.args)

			require.NoError(t, err)
			assert.Equal(t, tt.want, root.Dir())
		})
	}

	t.Run("falls back to the environment", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(storage.EnvHome, dir)

		root, err := resolveRoot([]string{"ticketmate", "new", "--", "--root", "x"})

		require.NoError(t, err)
		assert.Equal(t, dir, root.Dir())
	})
}

func TestInitializeApp(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	app, translations, err := initializeApp([]string{"ticketmate", "--root", dir})

	require.NoError(t, err)
	require.NotNil(t, translations)
	names := make([]string, 0, len(app.Commands))
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"cache", "config", "drafts", "new", "teams", "help"}, names)
	assert.FileExists(t, filepath.Join(dir, "config.json"))
	assert.DirExists(t, filepath.Join(dir, "drafts"))
}
