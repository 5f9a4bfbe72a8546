package extractor

import (
	"regexp"
	"sort"
	"strings"
)

const (
	minPhoneDigits = 10
	maxPhoneDigits = 15
)

var (
	nanpPhonePattern          = regexp.MustCompile(`(\+?1?[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}`)
	indianMobilePattern       = regexp.MustCompile(`(\+91[-.\s]?)?[6-9]\d{9}`)
	indianLandlinePattern     = regexp.MustCompile(`(\+91[-.\s]?)?0?[1-9]\d{2,4}[-.\s]?\d{6,8}`)
	indianTollFreePattern     = regexp.MustCompile(`(\+91[-.\s]?)?1800[-.\s]?\d{3}[-.\s]?\d{4}`)
	internationalPhonePattern = regexp.MustCompile(`\+[1-9]\d{1,14}`)
)

// DefaultPhoneMatcher covers North American, Indian mobile, landline and
// toll-free numbers, and E.164-style international numbers.
func DefaultPhoneMatcher() Matcher {
	return CombineMatchers(
		RegexpMatcher(nanpPhonePattern),
		RegexpMatcher(indianMobilePattern),
		RegexpMatcher(indianLandlinePattern),
		RegexpMatcher(indianTollFreePattern),
		RegexpMatcher(internationalPhonePattern),
	)
}

func (e *Extractor) extractPhones(html string) []PhoneEntry {
	candidates := make([]Span, 0)
	for _, span := range e.phones.Match(html) {
		if n := len(digitsOnly(span.Text)); n >= minPhoneDigits && n <= maxPhoneDigits {
			candidates = append(candidates, span)
		}
	}

	// Several families can match the same number at different offsets.
	// Earliest start wins, then the longest match.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].End > candidates[j].End
	})

	out := make([]PhoneEntry, 0)
	seen := make(map[string]struct{})
	lastEnd := -1
	for _, span := range candidates {
		if len(out) == MaxPhones {
			break
		}
		if span.Start < lastEnd {
			continue
		}
		lastEnd = span.End

		value := strings.TrimSpace(span.Text)
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}

		kind := ClassifyPhone(value)
		out = append(out, PhoneEntry{Value: value, Formatted: FormatPhone(value, kind), Type: kind})
	}
	return out
}

// ClassifyPhone reports whether raw looks like an Indian number.
func ClassifyPhone(raw string) PhoneType {
	digits := digitsOnly(raw)
	if strings.Contains(raw, "+91") {
		return PhoneIndian
	}
	if len(digits) == 10 && digits[0] >= '6' && digits[0] <= '9' {
		return PhoneIndian
	}
	return PhoneInternational
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
