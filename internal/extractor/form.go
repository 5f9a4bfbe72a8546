package extractor

import (
	"net/url"
	"regexp"
	"strings"
)

const defaultFormMethod = "GET"

var (
	formPattern       = regexp.MustCompile(`(?is)<form[^>]*>(.*?)</form>`)
	formActionPattern = regexp.MustCompile(`(?i)action\s*=\s*["']([^"']+)["']`)
	formMethodPattern = regexp.MustCompile(`(?i)method\s*=\s*["']([^"']+)["']`)
	messageFieldHint  = regexp.MustCompile(`message|comment`)

	contactFormKeywords = []string{"contact", "email", "message", "inquiry", "feedback", "support"}
)

func (e *Extractor) extractForms(html, baseURL string) []ContactFormEntry {
	out := make([]ContactFormEntry, 0)
	for _, form := range formPattern.FindAllString(html, -1) {
		if len(out) == MaxForms {
			break
		}
		if !looksLikeContactForm(form) {
			continue
		}

		action := ""
		if m := formActionPattern.FindStringSubmatch(form); m != nil {
			action = m[1]
		}
		method := defaultFormMethod
		if m := formMethodPattern.FindStringSubmatch(form); m != nil {
			method = m[1]
		}

		// Field hints are case-sensitive so that a capitalised label alone
		// does not count as an input.
		out = append(out, ContactFormEntry{
			URL:        resolveFormAction(action, baseURL),
			Method:     method,
			HasEmail:   strings.Contains(form, "email"),
			HasPhone:   strings.Contains(form, "phone"),
			HasMessage: messageFieldHint.MatchString(form),
		})
	}
	return out
}

func looksLikeContactForm(form string) bool {
	lower := strings.ToLower(form)
	for _, kw := range contactFormKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// resolveFormAction resolves action against the origin of baseURL. When
// baseURL cannot be parsed the two are concatenated.
func resolveFormAction(action, baseURL string) string {
	if action == "" {
		return baseURL
	}
	if strings.HasPrefix(action, "http") {
		return action
	}
	if resolved, ok := resolveAgainstOrigin(action, baseURL); ok {
		return resolved
	}
	if strings.HasPrefix(action, "/") {
		return baseURL + action
	}
	return baseURL + "/" + action
}

func resolveAgainstOrigin(action, baseURL string) (string, bool) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", false
	}
	ref, err := url.Parse(action)
	if err != nil {
		return "", false
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	return origin.ResolveReference(ref).String(), true
}
