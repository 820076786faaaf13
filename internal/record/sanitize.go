package record

import (
	"strings"
	"unicode"
)

// cleanText strips control and invisible format characters from user input.
// Line breaks survive so descriptions can span lines.
func cleanText(raw string) string {
	if raw == "" {
		return raw
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, char := range raw {
		if char == '\n' {
			b.WriteRune(char)
			continue
		}
		if char == '\t' || char == '\r' {
			b.WriteRune(' ')
			continue
		}
		if unicode.IsControl(char) || isInvisible(char) {
			continue
		}
		b.WriteRune(char)
	}
	return strings.TrimSpace(b.String())
}

func isInvisible(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u200E', '\u200F', '\u2060', '\uFEFF':
		return true
	}
	// Cf covers the remaining zero-width and bidi formatting marks.
	return unicode.Is(unicode.Cf, r)
}
