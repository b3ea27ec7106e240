// Package local holds user-facing texts with per-language translations.
package local

import "strings"

type Language string

const (
	Eng = Language("en")
	Spa = Language("es")
)

// ParseLanguage maps an IETF tag such as "es-MX" to a supported language,
// falling back to English.
func ParseLanguage(tag string) Language {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
	switch Language(base) {
	case Spa:
		return Spa
	default:
		return Eng
	}
}

type TextSet struct {
	Default      string
	translations map[Language]string
}

func NewSet(defaultText string, translations map[Language]string) TextSet {
	return TextSet{
		Default:      defaultText,
		translations: translations,
	}
}

func (l TextSet) Text(language Language) string {
	if text, ok := l.translations[language]; ok {
		return text
	}
	return l.Default
}
