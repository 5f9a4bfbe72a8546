package extractor

import (
	"regexp"
	"strings"
)

const minEmailLength = 6

var (
	emailPattern = regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`)

	// Substrings that mark placeholders, bounce addresses and asset names
	// such as logo@2x.png.
	emailBlacklist = []string{"example.", "test@", "noreply@", "no-reply@", ".png", ".jpg"}
)

func (e *Extractor) extractEmails(html string) []EmailEntry {
	out := make([]EmailEntry, 0)
	seen := make(map[string]struct{})
	for _, span := range e.emails.Match(html) {
		if len(out) == MaxEmails {
			break
		}
		value := strings.ToLower(strings.TrimSpace(span.Text))
		if !validEmail(value) {
			continue
		}
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, EmailEntry{Value: value, Context: Context(html, value)})
	}
	return out
}

func validEmail(value string) bool {
	if len(value) < minEmailLength {
		return false
	}
	for _, bad := range emailBlacklist {
		if strings.Contains(value, bad) {
			return false
		}
	}
	return true
}
