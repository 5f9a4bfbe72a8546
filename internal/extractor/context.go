package extractor

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	contextRadius = 50

	contextNotFound = "Found in page"
	contextEmpty    = "Contact information"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Context returns the text surrounding the first case-insensitive occurrence
// of value in text, stripped of markup. It never returns an empty string.
func Context(text, value string) string {
	if value == "" {
		return contextNotFound
	}
	loc := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(value)).FindStringIndex(text)
	if loc == nil {
		return contextNotFound
	}

	start := max(0, loc[0]-contextRadius)
	end := min(len(text), loc[1]+contextRadius)
	for start < loc[0] && !utf8.RuneStart(text[start]) {
		start++
	}
	for end > loc[1] && end < len(text) && !utf8.RuneStart(text[end]) {
		end--
	}

	snippet := strings.TrimSpace(tagPattern.ReplaceAllString(text[start:end], ""))
	if snippet == "" {
		return contextEmpty
	}
	return snippet
}
