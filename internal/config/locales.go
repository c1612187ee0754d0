package config

const (
	LangEN = "en"
	LangES = "es"
	LangRU = "ru"
)

// SupportedLanguages are the languages tickets can be written in.
// The CLI itself is translated to en and es only.
func SupportedLanguages() []string {
	return []string{LangEN, LangES, LangRU}
}

func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages() {
		if l == lang {
			return true
		}
	}
	return false
}

// GetLocaleConfig maps a ticket language to a CLI locale.
func GetLocaleConfig(lang string) string {
	switch lang {
	case LangES:
		return LangES
	default:
		return LangEN
	}
}
