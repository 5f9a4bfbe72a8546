// Package extractor finds contact information in raw HTML using pattern
// heuristics. It never fails: malformed input yields empty sequences.
package extractor

import (
	"time"
)

// Extractor runs the per-kind matchers over a page. The zero value is not
// usable; construct one with New.
type Extractor struct {
	emails    Matcher
	phones    Matcher
	addresses Matcher
	social    []SocialMatcher
	now       func() time.Time
}

// Option customises an Extractor.
type Option func(*Extractor)

// WithEmailMatcher replaces the email candidate matcher.
func WithEmailMatcher(m Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.emails = m
		}
	}
}

// WithPhoneMatcher replaces the phone candidate matcher, for example to add
// numbering plans for other regions.
func WithPhoneMatcher(m Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.phones = m
		}
	}
}

// WithAddressMatcher replaces the street-address matcher.
func WithAddressMatcher(m Matcher) Option {
	return func(e *Extractor) {
		if m != nil {
			e.addresses = m
		}
	}
}

// WithSocialMatchers replaces the social platform set.
func WithSocialMatchers(matchers ...SocialMatcher) Option {
	return func(e *Extractor) {
		if len(matchers) > 0 {
			e.social = matchers
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		if now != nil {
			e.now = now
		}
	}
}

// New builds an Extractor with the default heuristics.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		emails:    RegexpMatcher(emailPattern),
		phones:    DefaultPhoneMatcher(),
		addresses: RegexpMatcher(addressPattern),
		social:    DefaultSocialMatchers(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultExtractor = New()

// Extract runs the default extractor over html.
func Extract(html, baseURL string) *Result {
	return defaultExtractor.Extract(html, baseURL)
}

// Extract returns every contact entry found in html. baseURL is used to
// resolve relative form actions and is echoed on the result. ScrapingTime is
// left at zero for the caller to fill in.
func (e *Extractor) Extract(html, baseURL string) *Result {
	result := &Result{
		URL:          baseURL,
		Timestamp:    e.now().UTC(),
		Emails:       e.extractEmails(html),
		Phones:       e.extractPhones(html),
		Addresses:    e.extractAddresses(html),
		SocialMedia:  e.extractSocial(html),
		ContactForms: e.extractForms(html, baseURL),
		Success:      true,
	}
	result.TotalContactsFound = result.Count()
	return result
}
