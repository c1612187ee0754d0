package config

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/thomas-vilte/ticketmate/internal/config"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/i18n"
	"github.com/thomas-vilte/ticketmate/internal/ui"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct {
	out io.Writer
}

func NewConfigCommandFactory(out io.Writer) *ConfigCommandFactory {
	return &ConfigCommandFactory{out: out}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newSetLLMCommand(t, cfg),
			c.newSetKeyCommand(t, cfg),
			c.newSetModelCommand(t, cfg),
			c.newSetJiraCommand(t, cfg),
			c.newSetLangCommand(t, cfg),
			c.newSetRoundsCommand(t, cfg),
		},
	}
}

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			ui.PrintSectionBanner(c.out, t.GetMessage("config.current", 0, nil))
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_path", 0, nil), cfg.PathFile)
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_language", 0, nil), cfg.Language)
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_active_llm", 0, nil), string(cfg.ActiveLLM))
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_rounds", 0, nil), roundsLabel(t, cfg.MaxClarificationRounds))

			_, _ = fmt.Fprintln(c.out)
			for _, ai := range config.SupportedAIs() {
				p := cfg.Provider(ai)
				ui.PrintKeyValue(c.out, string(ai), fmt.Sprintf("%s  %s", p.Model, maskSecret(t, p.APIKey)))
			}

			_, _ = fmt.Fprintln(c.out)
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_jira_url", 0, nil), ui.OrDash(cfg.Jira.BaseURL))
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_jira_email", 0, nil), ui.OrDash(cfg.Jira.Email))
			ui.PrintKeyValue(c.out, t.GetMessage("config.field_jira_token", 0, nil), maskSecret(t, cfg.JiraToken()))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetLLMCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-llm",
		Usage: t.GetMessage("config.set_llm_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Required: true, Usage: t.GetMessage("config.flag_provider", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ai, err := parseProvider(command.String("provider"))
			if err != nil {
				return err
			}
			cfg.ActiveLLM = ai
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.llm_set", 0, map[string]interface{}{"Provider": ai}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetKeyCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-key",
		Usage: t.GetMessage("config.set_key_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: t.GetMessage("config.flag_provider", 0, nil)},
			&cli.StringFlag{Name: "key", Aliases: []string{"k"}, Required: true, Usage: t.GetMessage("config.flag_key", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ai := cfg.ActiveLLM
			if name := command.String("provider"); name != "" {
				parsed, err := parseProvider(name)
				if err != nil {
					return err
				}
				ai = parsed
			}
			key := strings.TrimSpace(command.String("key"))
			cfg.SetProvider(ai, func(p *config.AIProviderConfig) { p.APIKey = key })
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.key_set", 0, map[string]interface{}{"Provider": ai}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetModelCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-model",
		Usage: t.GetMessage("config.set_model_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "provider", Aliases: []string{"p"}, Usage: t.GetMessage("config.flag_provider", 0, nil)},
			&cli.StringFlag{Name: "model", Aliases: []string{"m"}, Required: true, Usage: t.GetMessage("config.flag_model", 0, nil)},
			&cli.BoolFlag{Name: "custom", Usage: t.GetMessage("config.flag_custom", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			ai := cfg.ActiveLLM
			if name := command.String("provider"); name != "" {
				parsed, err := parseProvider(name)
				if err != nil {
					return err
				}
				ai = parsed
			}
			model := config.Model(strings.TrimSpace(command.String("model")))
			if !command.Bool("custom") && !isKnownModel(ai, model) {
				known := make([]string, 0)
				for _, m := range config.ModelsForAI(ai) {
					known = append(known, string(m))
				}
				return apperrors.ErrInvalidConfig.
					WithContext("detail", fmt.Sprintf("unknown model %q for %s", model, ai)).
					WithSuggestion(t.GetMessage("config.model_suggestion", 0, map[string]interface{}{"Models": strings.Join(known, ", ")}))
			}
			cfg.SetProvider(ai, func(p *config.AIProviderConfig) { p.Model = model })
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.model_set", 0, map[string]interface{}{"Provider": ai, "Model": model}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetJiraCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-jira",
		Usage: t.GetMessage("config.set_jira_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Required: true, Usage: t.GetMessage("config.flag_jira_url", 0, nil)},
			&cli.StringFlag{Name: "token", Usage: t.GetMessage("config.flag_jira_token", 0, nil)},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: t.GetMessage("config.flag_jira_email", 0, nil)},
			&cli.BoolFlag{Name: "insecure", Usage: t.GetMessage("config.flag_insecure", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			previous := cfg.Jira
			cfg.Jira.BaseURL = strings.TrimRight(strings.TrimSpace(command.String("url")), "/")
			if command.IsSet("token") {
				cfg.Jira.Token = strings.TrimSpace(command.String("token"))
			}
			if command.IsSet("email") {
				cfg.Jira.Email = strings.TrimSpace(command.String("email"))
			}
			cfg.Jira.InsecureSkipVerify = command.Bool("insecure")
			if err := config.SaveConfig(cfg); err != nil {
				cfg.Jira = previous
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.jira_set", 0, map[string]interface{}{"URL": cfg.Jira.BaseURL}))
			if cfg.JiraToken() == "" {
				ui.PrintWarning(c.out, t.GetMessage("config.jira_token_missing", 0, map[string]interface{}{"Env": config.EnvJiraToken}))
			}
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetLangCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-lang",
		Usage: t.GetMessage("config.set_lang_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Required: true, Usage: t.GetMessage("config.flag_lang", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			lang := strings.ToLower(strings.TrimSpace(command.String("lang")))
			if !config.IsSupportedLanguage(lang) {
				return apperrors.ErrUnsupportedLanguage.
					WithContext("language", lang).
					WithSuggestion(strings.Join(config.SupportedLanguages(), ", "))
			}
			cfg.Language = lang
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.lang_set", 0, map[string]interface{}{"Lang": lang}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetRoundsCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "set-rounds",
		Usage: t.GetMessage("config.set_rounds_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max", Required: true, Usage: t.GetMessage("config.flag_max_rounds", 0, nil)},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			previous := cfg.MaxClarificationRounds
			cfg.MaxClarificationRounds = int(command.Int("max"))
			if err := config.SaveConfig(cfg); err != nil {
				cfg.MaxClarificationRounds = previous
				return err
			}
			ui.PrintSuccess(c.out, t.GetMessage("config.rounds_set", 0, map[string]interface{}{"Rounds": roundsLabel(t, cfg.MaxClarificationRounds)}))
			return nil
		},
	}
}

func parseProvider(name string) (config.AI, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !config.IsSupportedAI(name) {
		names := make([]string, 0, len(config.SupportedAIs()))
		for _, ai := range config.SupportedAIs() {
			names = append(names, string(ai))
		}
		return "", apperrors.ErrUnknownProvider.
			WithContext("provider", name).
			WithSuggestion(strings.Join(names, ", "))
	}
	return config.AI(name), nil
}

func isKnownModel(ai config.AI, model config.Model) bool {
	for _, m := range config.ModelsForAI(ai) {
		if m == model {
			return true
		}
	}
	return false
}

// maskSecret keeps the last four characters visible.
func maskSecret(t *i18n.Translations, secret string) string {
	if secret == "" {
		return t.GetMessage("config.not_set", 0, nil)
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}

func roundsLabel(t *i18n.Translations, rounds int) string {
	if rounds == 0 {
		return t.GetMessage("config.unlimited", 0, nil)
	}
	return fmt.Sprintf("%d", rounds)
}
