package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/thomas-vilte/ticketmate/internal/ai"
	"github.com/thomas-vilte/ticketmate/internal/ai/anthropic"
	"github.com/thomas-vilte/ticketmate/internal/ai/gemini"
	"github.com/thomas-vilte/ticketmate/internal/ai/openai"
	"github.com/thomas-vilte/ticketmate/internal/commands"
	cachecmd "github.com/thomas-vilte/ticketmate/internal/commands/cache"
	configcmd "github.com/thomas-vilte/ticketmate/internal/commands/config"
	draftscmd "github.com/thomas-vilte/ticketmate/internal/commands/drafts"
	teamscmd "github.com/thomas-vilte/ticketmate/internal/commands/teams"
	"github.com/thomas-vilte/ticketmate/internal/commands/tickets"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/drafts"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"github.com/thomas-vilte/ticketmate/internal/teams"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/thomas-vilte/ticketmate/internal/voice"
	"github.com/urfave/cli/v3"
)

var version = "dev"

func main() {
	app, t, err := initializeApp(os.Args)
	if err != nil {
		ui.HandleAppError(os.Stderr, err)
		os.Exit(1)
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		ui.HandleAppError(os.Stderr, err, t)
		os.Exit(1)
	}
}

func initializeApp(args []string) (*cli.Command, *i18n.Translations, error) {
	root, err := resolveRoot(args)
	if err != nil {
		return nil, nil, err
	}
	if err := root.Ensure(); err != nil {
		return nil, nil, err
	}

	cfgApp, err := config.LoadConfig(root)
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(config.GetLocaleConfig(cfgApp.Language))
	if err != nil {
		return nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	providers := ai.NewRegistry()
	for _, factory := range []ai.ProviderFactory{
		anthropic.NewFactory(nil),
		gemini.NewFactory(nil),
		openai.NewFactory(nil),
	} {
		if err := providers.Register(factory); err != nil {
			return nil, nil, err
		}
	}
	router := ai.NewRouter(config.NewFileSource(root), providers, ai.WithCacheDir(root.CacheDir()))

	draftStore, err := drafts.NewStore(root.DraftsDir())
	if err != nil {
		return nil, nil, err
	}

	deps := commands.Deps{
		Root:      root,
		Settings:  config.NewFileSource(root),
		Generator: router,
		Voice:     voice.NewService(router, cfgApp.Language),
		Drafts:    draftStore,
		Teams:     teams.NewStore(root.TeamsDir()),
		Tracker:   commands.JiraTracker,
		Runner:    newRunner(os.Stdin, os.Stdout),
		In:        os.Stdin,
		Out:       os.Stdout,
	}

	registry := commands.NewRegistry(cfgApp, translations)
	for name, factory := range map[string]commands.CommandFactory{
		"new":    tickets.NewNewTicketCommandFactory(deps),
		"drafts": draftscmd.NewDraftsCommandFactory(deps),
		"teams":  teamscmd.NewTeamsCommandFactory(deps),
		"config": configcmd.NewConfigCommandFactory(os.Stdout),
		"cache":  cachecmd.NewCacheCommandFactory(root.CacheDir(), os.Stdout),
	} {
		if err := registry.Register(name, factory); err != nil {
			return nil, nil, err
		}
	}

	cmds := registry.CreateCommands()
	cmds = append(cmds, &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help.usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	})

	var logCloser io.Closer
	return &cli.Command{
		Name:        "ticketmate",
		Usage:       translations.GetMessage("app.usage", 0, nil),
		Version:     version,
		Description: translations.GetMessage("app.description", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "root", Usage: translations.GetMessage("app.flag_root", 0, nil)},
			&cli.BoolFlag{Name: "debug", Usage: translations.GetMessage("app.flag_debug", 0, nil)},
			&cli.BoolFlag{Name: "verbose", Usage: translations.GetMessage("app.flag_verbose", 0, nil)},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			logCloser = logger.Initialize(logger.Options{
				Debug:    cmd.Bool("debug"),
				Verbose:  cmd.Bool("verbose"),
				FilePath: root.LogFile(),
			})
			logger.Debug(ctx, "starting", "version", version, "root", root.Dir(), "llm", cfgApp.ActiveLLM)
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if logCloser != nil {
				return logCloser.Close()
			}
			return nil
		},
		Commands:              cmds,
		EnableShellCompletion: true,
	}, translations, nil
}

// resolveRoot reads --root ahead of flag parsing since every store needs
// the data directory before the command tree is built.
func resolveRoot(args []string) (*storage.Root, error) {
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			break
		}
		if v, ok := strings.CutPrefix(arg, "--root="); ok && v != "" {
			return storage.NewRoot(v), nil
		}
		if arg == "--root" && i+1 < len(args) {
			return storage.NewRoot(args[i+1]), nil
		}
	}
	return storage.DefaultRoot()
}

// newRunner picks the bubbletea spinner on an interactive terminal, a
// line spinner when only the output is a terminal and no spinner otherwise.
func newRunner(in *os.File, out *os.File) ui.Runner {
	switch {
	case isTerminal(in) && isTerminal(out):
		return ui.NewSpinnerRunner(in, out)
	case isTerminal(out):
		return ui.NewLineSpinnerRunner(out)
	default:
		return ui.DirectRunner{}
	}
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
