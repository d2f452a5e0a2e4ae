package validators

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SanitizeString prepares catalog search input: it composes accents to NFC so
// "Señora" typed either way matches the stored title, drops control and
// format characters, collapses whitespace and caps the result at maxLen
// runes. A maxLen of zero leaves the length alone.
func SanitizeString(input string, maxLen int) string {
	printable := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, norm.NFC.String(input))
	cleaned := strings.Join(strings.Fields(printable), " ")
	if maxLen <= 0 {
		return cleaned
	}
	runes := []rune(cleaned)
	if len(runes) <= maxLen {
		return cleaned
	}
	return strings.TrimSpace(string(runes[:maxLen]))
}

// NormalizeISBN strips the hyphens and spaces printed on jackets and
// upper-cases an ISBN-10 check digit, so "0-441-01359-7" and "0441013597"
// collide on the unique index. Nil and blank values pass through unchanged.
func NormalizeISBN(isbn *string) *string {
	if isbn == nil || strings.TrimSpace(*isbn) == "" {
		return isbn
	}
	compact := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, *isbn)
	return &compact
}
