package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/joho/godotenv"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/storage"
)

const EnvJiraToken = "TICKETMATE_JIRA_TOKEN"

type (
	Config struct {
		Language               string                  `json:"language"`
		ActiveLLM              AI                      `json:"active_llm"`
		AIProviders            map[AI]AIProviderConfig `json:"ai_providers"`
		Jira                   JiraConfig              `json:"jira"`
		MaxClarificationRounds int                     `json:"max_clarification_rounds"`
		CacheTTLMinutes        int                     `json:"cache_ttl_minutes"`

		PathFile string `json:"-"`
		// env holds credential overrides; never persisted.
		env map[string]string
	}

	AIProviderConfig struct {
		APIKey  string `json:"api_key,omitempty"`
		Model   Model  `json:"model,omitempty"`
		BaseURL string `json:"base_url,omitempty"`
	}

	JiraConfig struct {
		BaseURL            string `json:"base_url,omitempty"`
		Token              string `json:"token,omitempty"`
		Email              string `json:"email,omitempty"`
		InsecureSkipVerify bool   `json:"insecure_skip_verify,omitempty"`
	}
)

const (
	defaultLang            = LangEN
	defaultActiveLLM       = AIAnthropic
	defaultCacheTTLMinutes = 60
)

// LoadConfig reads config.json under root, creating it with defaults on
// first use. Credentials from <root>/.env and the process environment are
// layered on top without being written back.
func LoadConfig(root *storage.Root) (*Config, error) {
	configPath := root.ConfigFile()

	var config *Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config, err = createDefaultConfig(configPath)
		if err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("error checking configuration file: %w", err)
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("error reading configuration file: %w", err)
		}

		config = &Config{}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, apperrors.ErrInvalidConfig.WithError(err).WithContext("path", configPath)
		}
		config.PathFile = configPath
		applyDefaults(config)

		if err := validateConfig(config); err != nil {
			return nil, err
		}
	}

	env, err := loadEnv(root.EnvFile())
	if err != nil {
		return nil, err
	}
	config.env = env

	return config, nil
}

func loadEnv(envFile string) (map[string]string, error) {
	env := map[string]string{}
	if _, err := os.Stat(envFile); err == nil {
		fileEnv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, apperrors.ErrInvalidConfig.WithError(err).WithContext("path", envFile)
		}
		env = fileEnv
	}

	keys := []string{EnvJiraToken}
	for _, ai := range SupportedAIs() {
		keys = append(keys, APIKeyEnvVar(ai))
	}
	for _, key := range keys {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			env[key] = v
		}
	}
	return env, nil
}

func createDefaultConfig(path string) (*Config, error) {
	config := &Config{
		PathFile: path,
	}
	applyDefaults(config)

	if err := SaveConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

func applyDefaults(config *Config) {
	if config.Language == "" {
		config.Language = defaultLang
	}
	if config.ActiveLLM == "" {
		config.ActiveLLM = defaultActiveLLM
	}
	if config.AIProviders == nil {
		config.AIProviders = map[AI]AIProviderConfig{}
	}
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return err
	}

	if config.PathFile == "" {
		return apperrors.ErrInvalidConfig.WithContext("detail", "configuration file path is not set")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}

	if err := storage.WriteFileAtomic(config.PathFile, data, 0600); err != nil {
		return apperrors.ErrStorageWrite.WithError(err).WithContext("path", config.PathFile)
	}

	return nil
}

func validateConfig(config *Config) error {
	invalid := func(detail string) error {
		return apperrors.ErrInvalidConfig.WithContext("detail", detail)
	}

	if !IsSupportedLanguage(config.Language) {
		return invalid(fmt.Sprintf("unsupported language %q", config.Language))
	}
	if !IsSupportedAI(string(config.ActiveLLM)) {
		return invalid(fmt.Sprintf("unsupported active_llm %q", config.ActiveLLM))
	}
	for name := range config.AIProviders {
		if !IsSupportedAI(string(name)) {
			return invalid(fmt.Sprintf("unsupported provider %q in ai_providers", name))
		}
	}
	if config.MaxClarificationRounds < 0 {
		return invalid("max_clarification_rounds must not be negative")
	}
	if config.CacheTTLMinutes < 0 {
		return invalid("cache_ttl_minutes must not be negative")
	}
	if config.Jira.BaseURL != "" {
		u, err := url.Parse(config.Jira.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid(fmt.Sprintf("jira base_url %q is not an http(s) URL", config.Jira.BaseURL))
		}
	}
	return nil
}

// Provider returns the settings of ai with the environment key applied and
// the default model filled in.
func (c *Config) Provider(ai AI) AIProviderConfig {
	p := c.AIProviders[ai]
	if v := c.env[APIKeyEnvVar(ai)]; v != "" {
		p.APIKey = v
	}
	if p.Model == "" {
		p.Model = DefaultModelForAI(ai)
	}
	return p
}

// JiraToken returns the tracker token, preferring the environment.
func (c *Config) JiraToken() string {
	if v := c.env[EnvJiraToken]; v != "" {
		return v
	}
	return c.Jira.Token
}

// SetProvider updates one provider entry in place.
func (c *Config) SetProvider(ai AI, update func(p *AIProviderConfig)) {
	if c.AIProviders == nil {
		c.AIProviders = map[AI]AIProviderConfig{}
	}
	p := c.AIProviders[ai]
	update(&p)
	c.AIProviders[ai] = p
}
