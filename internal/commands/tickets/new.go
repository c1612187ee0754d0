package tickets

import (
	"context"
	"errors"

	"github.com/thomas-vilte/ticketmate/internal/commands"
	"github.com/thomas-vilte/ticketmate/internal/commands/handler"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type NewTicketCommandFactory struct {
	deps commands.Deps
}

func NewNewTicketCommandFactory(deps commands.Deps) *NewTicketCommandFactory {
	return &NewTicketCommandFactory{deps: deps}
}

func (f *NewTicketCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "new",
		Aliases: []string{"n"},
		Usage:   t.GetMessage("new.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "team",
				Aliases: []string{"t"},
				Usage:   t.GetMessage("new.flag_team", 0, nil),
			},
			&cli.StringFlag{
				Name:  "text",
				Usage: t.GetMessage("new.flag_text", 0, nil),
			},
			&cli.StringFlag{
				Name:    "audio",
				Aliases: []string{"a"},
				Usage:   t.GetMessage("new.flag_audio", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return f.run(ctx, command, t, cfg)
		},
	}
}

func (f *NewTicketCommandFactory) run(ctx context.Context, command *cli.Command, t *i18n.Translations, cfg *config.Config) error {
	all, err := f.deps.Teams.LoadAll(ctx)
	if err != nil {
		return err
	}

	s := handler.NewSession(f.deps, t, cfg)
	text := command.String("text")

	var guess *string
	if audio := command.String("audio"); audio != "" {
		var result models.VoiceResult
		err := f.deps.Runner.Run(ctx, t.GetMessage("new.listening", 0, nil), func(ctx context.Context) error {
			var err error
			result, err = f.deps.Voice.Classify(ctx, audio, all)
			return err
		})
		if err != nil {
			return err
		}
		logger.Debug(ctx, "voice request classified", "team_matched", result.TeamName != nil)
		guess = result.TeamName
		if text == "" {
			text = result.Description
		}
		ui.PrintInfo(f.deps.Out, t.GetMessage("new.voice_result", 0, map[string]interface{}{"Text": result.Description}))
	}
	s.SetRequest(text)

	team, err := s.ChooseTeam(ctx, all, command.String("team"), guess)
	if err != nil {
		if errors.Is(err, handler.ErrQuit) {
			return nil
		}
		return err
	}
	s.SetTeam(team)

	ui.PrintSectionBanner(f.deps.Out, t.GetMessage("new.banner", 0, map[string]interface{}{"Team": team.Name, "Project": team.JiraProject}))
	return s.Run(ctx)
}
