package drafts

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/commands"
	"github.com/thomas-vilte/ticketmate/internal/commands/handler"
	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/export"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type DraftsCommandFactory struct {
	deps commands.Deps
}

func NewDraftsCommandFactory(deps commands.Deps) *DraftsCommandFactory {
	return &DraftsCommandFactory{deps: deps}
}

func (f *DraftsCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "drafts",
		Aliases: []string{"d"},
		Usage:   t.GetMessage("drafts.usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t),
			f.newShowCommand(t),
			f.newResumeCommand(t, cfg),
			f.newDeleteCommand(t),
			f.newExportCommand(t),
		},
	}
}

func (f *DraftsCommandFactory) newListCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   t.GetMessage("drafts.list_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			all, err := f.deps.Drafts.LoadAll(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				ui.PrintInfo(f.deps.Out, t.GetMessage("drafts.empty", 0, nil))
				return nil
			}
			for _, d := range all {
				ui.PrintDraftRow(f.deps.Out, d)
			}
			return nil
		},
	}
}

func (f *DraftsCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("drafts.show_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			draft, err := f.find(ctx, command.Args().First())
			if err != nil {
				return err
			}

			out := f.deps.Out
			ui.PrintSectionBanner(out, draft.Title())
			ui.PrintKeyValue(out, "ID", draft.ID)
			ui.PrintKeyValue(out, t.GetMessage("drafts.field_team", 0, nil), draft.TeamName)
			ui.PrintKeyValue(out, t.GetMessage("drafts.field_stage", 0, nil), string(draft.Stage))
			ui.PrintKeyValue(out, t.GetMessage("drafts.field_updated", 0, nil), draft.UpdatedAt.Local().Format("2006-01-02 15:04"))
			_, _ = fmt.Fprintf(out, "\n%s\n", draft.UserInput)

			for _, qa := range draft.Answers {
				_, _ = fmt.Fprintf(out, "\n%s %s\n   %s\n", ui.Accent.Sprint("?"), qa.Question, qa.Answer)
			}
			if draft.Stage == models.StageClarification {
				ui.PrintQuestions(out, draft.Questions, draft.PendingAnswers, t)
			}
			if draft.Result != nil && draft.Result.IsReady() {
				_, _ = fmt.Fprintln(out)
				ui.PrintTicket(out, *draft.Result)
			}
			return nil
		},
	}
}

func (f *DraftsCommandFactory) newResumeCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "resume",
		Usage:     t.GetMessage("drafts.resume_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			draft, err := f.find(ctx, command.Args().First())
			if err != nil {
				return err
			}
			team, err := f.deps.Teams.Get(ctx, draft.TeamName)
			if err != nil {
				return err
			}

			s := handler.NewSession(f.deps, t, cfg)
			if err := s.Restore(draft, team); err != nil {
				return err
			}
			ui.PrintSectionBanner(f.deps.Out, t.GetMessage("new.banner", 0, map[string]interface{}{"Team": team.Name, "Project": team.JiraProject}))
			return s.Run(ctx)
		},
	}
}

func (f *DraftsCommandFactory) newDeleteCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     t.GetMessage("drafts.delete_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, command *cli.Command) error {
			draft, err := f.find(ctx, command.Args().First())
			if err != nil {
				return err
			}
			if err := f.deps.Drafts.Delete(draft.ID); err != nil {
				return err
			}
			ui.PrintSuccess(f.deps.Out, t.GetMessage("drafts.deleted", 0, map[string]interface{}{"ID": draft.ID}))
			return nil
		},
	}
}

func (f *DraftsCommandFactory) newExportCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     t.GetMessage("drafts.export_usage", 0, nil),
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   string(export.FormatMarkdown),
				Usage:   t.GetMessage("drafts.flag_format", 0, nil),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("drafts.flag_out", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			format, err := export.ParseFormat(command.String("format"))
			if err != nil {
				return err
			}
			draft, err := f.find(ctx, command.Args().First())
			if err != nil {
				return err
			}
			content, err := export.Render(draft, format)
			if err != nil {
				return err
			}

			path := command.String("out")
			if path == "" {
				_, err := f.deps.Out.Write(content)
				return err
			}
			if err := storage.WriteFileAtomic(path, content, 0644); err != nil {
				return apperrors.ErrStorageWrite.WithError(err).WithContext("path", path)
			}
			ui.PrintSuccess(f.deps.Out, t.GetMessage("drafts.exported", 0, map[string]interface{}{"Path": path}))
			return nil
		},
	}
}

// find resolves a full draft ID or a unique prefix of one, as shown by
// drafts list.
func (f *DraftsCommandFactory) find(ctx context.Context, id string) (models.Draft, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.Draft{}, apperrors.ErrDraftNotFound.WithContext("detail", "a draft id is required")
	}

	draft, err := f.deps.Drafts.Get(id)
	if err == nil || !apperrors.IsType(err, apperrors.TypeValidation) {
		return draft, err
	}

	all, err := f.deps.Drafts.LoadAll(ctx)
	if err != nil {
		return models.Draft{}, err
	}
	var matches []models.Draft
	for _, d := range all {
		if strings.HasPrefix(d.ID, id) {
			matches = append(matches, d)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return models.Draft{}, apperrors.ErrDraftNotFound.WithContext("draft", id)
	default:
		return models.Draft{}, apperrors.ErrDraftNotFound.WithContext("detail", fmt.Sprintf("%q matches %d drafts", id, len(matches)))
	}
}

