package teams

import (
	"context"
	"fmt"

	"github.com/thomas-vilte/ticketmate/internal/commands"
	"github.com/thomas-vilte/ticketmate/internal/config"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/teams"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type TeamsCommandFactory struct {
	deps commands.Deps
}

func NewTeamsCommandFactory(deps commands.Deps) *TeamsCommandFactory {
	return &TeamsCommandFactory{deps: deps}
}

func (f *TeamsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "teams",
		Usage: t.GetMessage("teams.usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t),
			f.newShowCommand(t),
			f.newAddCommand(t),
			f.newRemoveCommand(t),
		},
	}
}

func (f *TeamsCommandFactory) newListCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   t.GetMessage("teams.list_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			all, err := f.deps.Teams.LoadAll(ctx)
			if err != nil {
				return err
			}
			if len(all) == 0 {
				ui.PrintInfo(f.deps.Out, t.GetMessage("teams.empty", 0, nil))
				return nil
			}
			for _, team := range all {
				_, _ = fmt.Fprintf(f.deps.Out, "%s %s %s\n", ui.Accent.Sprint("•"), team.Name,
					ui.Dim.Sprintf("(%s, %s)", team.JiraProject, team.DefaultIssueType))
			}
			return nil
		},
	}
}

func (f *TeamsCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("teams.show_usage", 0, nil),
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, command *cli.Command) error {
			team, err := f.deps.Teams.Get(ctx, command.Args().First())
			if err != nil {
				return err
			}
			out := f.deps.Out
			ui.PrintSectionBanner(out, team.Name)
			ui.PrintKeyValue(out, t.GetMessage("teams.field_project", 0, nil), team.JiraProject)
			ui.PrintKeyValue(out, t.GetMessage("teams.field_issue_type", 0, nil), team.DefaultIssueType)
			ui.PrintKeyValue(out, t.GetMessage("teams.field_lead", 0, nil), ui.OrDash(team.TeamLead))
			_, _ = fmt.Fprintf(out, "\n%s\n%s\n", ui.Dim.Sprint(t.GetMessage("teams.field_rules", 0, nil)), ui.OrDash(team.Rules))
			return nil
		},
	}
}

func (f *TeamsCommandFactory) newAddCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: t.GetMessage("teams.add_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Required: true, Usage: t.GetMessage("teams.flag_name", 0, nil)},
			&cli.StringFlag{Name: "project", Aliases: []string{"p"}, Required: true, Usage: t.GetMessage("teams.flag_project", 0, nil)},
			&cli.StringFlag{Name: "type", Value: teams.DefaultIssueType, Usage: t.GetMessage("teams.flag_type", 0, nil)},
			&cli.StringFlag{Name: "lead", Usage: t.GetMessage("teams.flag_lead", 0, nil)},
			&cli.StringFlag{Name: "rules", Usage: t.GetMessage("teams.flag_rules", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			team, err := f.deps.Teams.Save(ctx, models.TeamProfile{
				Name:             command.String("name"),
				JiraProject:      command.String("project"),
				DefaultIssueType: command.String("type"),
				TeamLead:         command.String("lead"),
				Rules:            command.String("rules"),
			})
			if err != nil {
				return err
			}
			ui.PrintSuccess(f.deps.Out, t.GetMessage("teams.saved", 0, map[string]interface{}{"Name": team.Name, "Project": team.JiraProject}))
			return nil
		},
	}
}

func (f *TeamsCommandFactory) newRemoveCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     t.GetMessage("teams.remove_usage", 0, nil),
		ArgsUsage: "<name>",
		Action: func(ctx context.Context, command *cli.Command) error {
			name := command.Args().First()
			if err := f.deps.Teams.Delete(ctx, name); err != nil {
				return err
			}
			ui.PrintSuccess(f.deps.Out, t.GetMessage("teams.removed", 0, map[string]interface{}{"Name": name}))
			return nil
		},
	}
}

