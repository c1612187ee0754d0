package cache

import (
	"context"
	"io"
	"time"

	"github.com/thomas-vilte/ticketmate/internal/cache"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type CacheCommandFactory struct {
	dir string
	out io.Writer
}

func NewCacheCommandFactory(dir string, out io.Writer) *CacheCommandFactory {
	return &CacheCommandFactory{dir: dir, out: out}
}

func (c *CacheCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: t.GetMessage("cache.usage", 0, nil),
		Commands: []*cli.Command{
			{
				Name:  "clean",
				Usage: t.GetMessage("cache.clean_usage", 0, nil),
				Action: func(ctx context.Context, command *cli.Command) error {
					store, err := cache.NewCache(c.dir, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
					if err != nil {
						return apperrors.ErrStorageWrite.WithError(err).WithContext("path", c.dir)
					}

					removed, err := store.Clean()
					if err != nil {
						return apperrors.ErrStorageWrite.WithError(err).WithContext("path", c.dir)
					}

					ui.PrintSuccess(c.out, t.GetMessage("cache.cleaned", removed, map[string]interface{}{"Count": removed}))
					return nil
				},
			},
		},
	}
}
