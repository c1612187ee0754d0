package config

type AI string

const (
	AIAnthropic AI = "anthropic"
	AIGemini    AI = "gemini"
	AIOpenAI    AI = "openai"
)

type Model string

const (
	ModelClaudeSonnet45 Model = "claude-sonnet-4-5"
	ModelClaudeHaiku45  Model = "claude-haiku-4-5"

	ModelGeminiV25Pro       Model = "gemini-2.5-pro"
	ModelGeminiV25Flash     Model = "gemini-2.5-flash"
	ModelGeminiV25FlashLite Model = "gemini-2.5-flash-lite"

	ModelGPTV4o     Model = "gpt-4o"
	ModelGPTV4oMini Model = "gpt-4o-mini"
)

func SupportedAIs() []AI {
	return []AI{
		AIAnthropic,
		AIGemini,
		AIOpenAI,
	}
}

func IsSupportedAI(name string) bool {
	for _, ai := range SupportedAIs() {
		if string(ai) == name {
			return true
		}
	}
	return false
}

func ModelsForAI(ai AI) []Model {
	switch ai {
	case AIAnthropic:
		return []Model{ModelClaudeSonnet45, ModelClaudeHaiku45}
	case AIGemini:
		return []Model{ModelGeminiV25Flash, ModelGeminiV25Pro, ModelGeminiV25FlashLite}
	case AIOpenAI:
		return []Model{ModelGPTV4o, ModelGPTV4oMini}
	default:
		return []Model{}
	}
}

func DefaultModelForAI(ai AI) Model {
	models := ModelsForAI(ai)
	if len(models) == 0 {
		return ""
	}
	return models[0]
}

// APIKeyEnvVar is the environment variable that overrides the stored key.
func APIKeyEnvVar(ai AI) string {
	switch ai {
	case AIAnthropic:
		return "TICKETMATE_ANTHROPIC_API_KEY"
	case AIGemini:
		return "TICKETMATE_GEMINI_API_KEY"
	case AIOpenAI:
		return "TICKETMATE_OPENAI_API_KEY"
	default:
		return ""
	}
}
