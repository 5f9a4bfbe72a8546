// Package scoring rates how reachable a site is from the contacts found on it.
package scoring

import (
	"net/url"
	"strings"
	"unicode"
)

const (
	categoryContact  = "contact_completeness"
	categoryWebsite  = "website_quality"
	categorySocial   = "social_presence"
	categoryBusiness = "business_profile"
)

var freeHostingDomains = []string{
	"wordpress.com",
	"blogspot.com",
	"wixsite.com",
	"weebly.com",
	"squarespace.com",
	"medium.com",
	"substack.com",
	"godaddysites.com",
	"notion.site",
	"googlepages.com",
}

// ContactFeatures captures the signals derived from one scrape.
type ContactFeatures struct {
	Emails  []string
	Phones  []string
	// Socials maps a lowercase platform name to its profile URL.
	Socials             map[string]string
	HasContactForm      bool
	FormCapturesEmail   bool
	FormCapturesMessage bool
	Address             string
	Website             string
}

// ScoreResult reports the aggregate score, its per-category breakdown and a
// letter grade.
type ScoreResult struct {
	Total     int            `json:"total"`
	Grade     string         `json:"grade"`
	Breakdown map[string]int `json:"breakdown"`
}

// ComputeScore evaluates the provided features. The maximum total is 100.
func ComputeScore(input ContactFeatures) ScoreResult {
	breakdown := map[string]int{
		categoryContact:  capScore(scoreContactCompleteness(input), 30),
		categoryWebsite:  capScore(scoreWebsiteQuality(input), 30),
		categorySocial:   capScore(scoreSocialPresence(input), 20),
		categoryBusiness: capScore(scoreBusinessProfile(input), 20),
	}

	total := 0
	for _, value := range breakdown {
		total += value
	}
	return ScoreResult{Total: total, Grade: grade(total), Breakdown: breakdown}
}

func grade(total int) string {
	switch {
	case total >= 80:
		return "A"
	case total >= 60:
		return "B"
	case total >= 40:
		return "C"
	default:
		return "D"
	}
}

func scoreContactCompleteness(input ContactFeatures) int {
	score := 0
	if hasValue(input.Emails) {
		score += 10
	}
	if hasValue(input.Phones) {
		score += 10
	}
	if n := len(nonEmpty(input.Socials)); n > 0 {
		score += min(n*2, 10)
	}
	return score
}

func scoreWebsiteQuality(input ContactFeatures) int {
	score := 0
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(input.Website)), "https://") {
		score += 10
	}
	if input.HasContactForm {
		score += 10
	}
	if input.FormCapturesEmail {
		score += 5
	}
	if input.FormCapturesMessage {
		score += 5
	}
	return score
}

func scoreSocialPresence(input ContactFeatures) int {
	socials := nonEmpty(input.Socials)
	score := 0
	for _, platform := range []string{"linkedin", "instagram", "facebook"} {
		if socials[platform] != "" {
			score += 5
		}
	}
	if socials["twitter"] != "" || socials["youtube"] != "" || socials["tiktok"] != "" {
		score += 5
	}
	return score
}

func scoreBusinessProfile(input ContactFeatures) int {
	score := 0
	if hasCompleteAddress(input.Address) {
		score += 10
	}
	if highQualityDomain(input.Website) {
		score += 10
	}
	return score
}

func capScore(score, limit int) int {
	return min(score, limit)
}

func hasValue(values []string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return true
		}
	}
	return false
}

func nonEmpty(socials map[string]string) map[string]string {
	result := make(map[string]string, len(socials))
	for key, value := range socials {
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		result[key] = value
	}
	return result
}

func hasCompleteAddress(raw string) bool {
	addr := strings.TrimSpace(raw)
	if len(addr) < 10 {
		return false
	}
	var hasLetter, hasDigit bool
	separators := 0
	for _, r := range addr {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case r == ',':
			separators++
		}
	}
	return hasLetter && hasDigit && separators >= 1
}

func highQualityDomain(raw string) bool {
	domain := extractDomain(raw)
	if domain == "" {
		return false
	}
	for _, bad := range freeHostingDomains {
		if domain == bad || strings.HasSuffix(domain, "."+bad) {
			return false
		}
	}
	return strings.Contains(domain, ".")
}

func extractDomain(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if lowered == "" {
		return ""
	}
	if !strings.Contains(lowered, "://") {
		lowered = "https://" + lowered
	}
	parsed, err := url.Parse(lowered)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
