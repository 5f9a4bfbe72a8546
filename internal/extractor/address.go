package extractor

import (
	"regexp"
	"strings"
)

const (
	minAddressLength = 20
	maxAddressLength = 200
)

var addressPattern = regexp.MustCompile(`(?i)\d+\s+[a-z0-9\s,.-]+(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Lane|Ln|Drive|Dr|Way|Place|Pl|Court|Ct|Circle|Cir)\s*,?\s*[a-z\s,.-]*\d{5}(?:-\d{4})?`)

func (e *Extractor) extractAddresses(html string) []AddressEntry {
	out := make([]AddressEntry, 0)
	seen := make(map[string]struct{})
	for _, span := range e.addresses.Match(html) {
		if len(out) == MaxAddresses {
			break
		}
		if n := len(span.Text); n <= minAddressLength || n >= maxAddressLength {
			continue
		}
		value := strings.TrimSpace(span.Text)
		if _, dup := seen[value]; dup {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, AddressEntry{Value: value, Context: AddressContext})
	}
	return out
}
