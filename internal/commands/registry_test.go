package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/urfave/cli/v3"
)

type stubFactory struct {
	name string
}

func (s stubFactory) CreateCommand(*i18n.Translations, *config.Config) *cli.Command {
	return &cli.Command{Name: s.name}
}

func TestRegistry(t *testing.T) {
	translations, err := i18n.NewTranslations("en")
	require.NoError(t, err)

	t.Run("Success - commands are sorted by name", func(t *testing.T) {
		// Arrange
		registry := NewRegistry(&config.Config{}, translations)
		require.NoError(t, registry.Register("teams", stubFactory{name: "teams"}))
		require.NoError(t, registry.Register("config", stubFactory{name: "config"}))

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 2)
		assert.Equal(t, "config", commands[0].Name)
		assert.Equal(t, "teams", commands[1].Name)
	})

	t.Run("Error - duplicate registration", func(t *testing.T) {
		// Arrange
		registry := NewRegistry(&config.Config{}, translations)
		require.NoError(t, registry.Register("new", stubFactory{name: "new"}))

		// Act
		err := registry.Register("new", stubFactory{name: "new"})

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "'new' is already registered")
	})
}
