package domain

import "strings"

// NormalizeWord trims surrounding whitespace and returns the display form and
// the case-folded lookup key. Both are empty when the input is blank.
func NormalizeWord(raw string) (display, key string) {
	display = strings.TrimSpace(raw)
	return display, strings.ToLower(display)
}

// NormalizeLanguage trims and lower-cases a language code.
func NormalizeLanguage(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeNote trims a free-text note. An empty result means "no note".
func NormalizeNote(raw string) string {
	return strings.TrimSpace(raw)
}
