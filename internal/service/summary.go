package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/octobees/contact-scraper/internal/extractor"
	"github.com/octobees/contact-scraper/internal/service/scoring"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const (
	trackingPrefix     = "utm_"
	defaultPhoneRegion = "IN"
	defaultHTTPTimeout = 5 * time.Second
	mxLookupTimeout    = 3 * time.Second
)

var allowedSocialDomains = map[string]string{
	"linkedin.com":  "linkedin",
	"facebook.com":  "facebook",
	"instagram.com": "instagram",
	"twitter.com":   "twitter",
	"x.com":         "twitter",
	"youtube.com":   "youtube",
	"youtu.be":      "youtube",
	"tiktok.com":    "tiktok",
}

// ContactSummary is the cleaned, de-duplicated view of a scrape result.
type ContactSummary struct {
	URL            string              `json:"url"`
	Emails         []string            `json:"emails"`
	Phones         []string            `json:"phones"`
	Socials        SocialLinks         `json:"socials"`
	Address        string              `json:"address"`
	ContactFormURL string              `json:"contact_form_url"`
	Verified       bool                `json:"verified"`
	Score          scoring.ScoreResult `json:"score"`
}

// SocialLinks stores the canonical URL for each supported network.
type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty"`
	Facebook  string `json:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty"`
	Youtube   string `json:"youtube,omitempty"`
	Tiktok    string `json:"tiktok,omitempty"`
}

// DNSResolver abstracts DNS lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// HTTPClient abstracts HTTP requests for link verification.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// DataProcessor cleans extraction results and optionally verifies them
// against DNS and the social networks.
type DataProcessor struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	httpClient    HTTPClient
}

// DataProcessorOption configures optional dependencies.
type DataProcessorOption func(*DataProcessor)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) DataProcessorOption {
	return func(p *DataProcessor) {
		p.dnsResolver = resolver
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPClient) DataProcessorOption {
	return func(p *DataProcessor) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewDataProcessor builds a processor. defaultRegion is the ISO region used
// to parse numbers written without a country code.
func NewDataProcessor(defaultRegion string, opts ...DataProcessorOption) *DataProcessor {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	p := &DataProcessor{
		DefaultRegion: region,
		dnsResolver:   net.DefaultResolver,
		httpClient:    &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summarize cleans result into a ContactSummary and scores it. With verify
// set, email domains need an MX record and social links must answer 200.
func (p *DataProcessor) Summarize(ctx context.Context, result *extractor.Result, verify bool) (ContactSummary, error) {
	if result == nil {
		return ContactSummary{}, errors.New("scrape has no result")
	}

	emails := make([]string, 0, len(result.Emails))
	for _, e := range result.Emails {
		emails = append(emails, e.Value)
	}
	addresses := make([]string, 0, len(result.Addresses))
	for _, a := range result.Addresses {
		addresses = append(addresses, a.Value)
	}
	socials := make(map[string][]string)
	for _, s := range result.SocialMedia {
		key := strings.ToLower(string(s.Platform))
		socials[key] = append(socials[key], s.URL)
	}

	summary := ContactSummary{
		URL:      result.URL,
		Emails:   p.cleanEmails(ctx, emails, verify),
		Phones:   p.normalizePhones(result.Phones),
		Socials:  p.validateSocials(ctx, socials, verify),
		Address:  selectBestAddress(addresses),
		Verified: verify,
	}

	features := scoring.ContactFeatures{
		Emails:  summary.Emails,
		Phones:  summary.Phones,
		Socials: summary.Socials.asMap(),
		Address: summary.Address,
		Website: result.URL,
	}
	if len(result.ContactForms) > 0 {
		form := result.ContactForms[0]
		summary.ContactFormURL = sanitizeContactForm(form.URL)
		features.HasContactForm = true
		features.FormCapturesEmail = form.HasEmail
		features.FormCapturesMessage = form.HasMessage
	}
	summary.Score = scoring.ComputeScore(features)

	return summary, nil
}

func (p *DataProcessor) cleanEmails(ctx context.Context, emails []string, verify bool) []string {
	seen := make(map[string]struct{}, len(emails))
	domainCache := make(map[string]bool)
	valid := make([]string, 0, len(emails))

	for _, raw := range emails {
		email := strings.ToLower(strings.TrimSpace(raw))
		if email == "" || !emailPattern.MatchString(email) {
			continue
		}
		domain := email[strings.LastIndex(email, "@")+1:]
		if !isDomainValid(domain) {
			continue
		}
		asciiDomain, err := idnaProfile.ToASCII(domain)
		if err != nil || asciiDomain == "" {
			continue
		}
		if verify {
			hasMX, cached := domainCache[asciiDomain]
			if !cached {
				hasMX = p.hasMXRecord(ctx, asciiDomain)
				domainCache[asciiDomain] = hasMX
			}
			if !hasMX {
				continue
			}
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}
		valid = append(valid, email)
	}
	return valid
}

func (p *DataProcessor) normalizePhones(phones []extractor.PhoneEntry) []string {
	seen := make(map[string]struct{}, len(phones))
	valid := make([]string, 0, len(phones))

	for _, phone := range phones {
		region := p.DefaultRegion
		if phone.Type == extractor.PhoneIndian {
			region = "IN"
		}
		normalized := normalizePhone(phone.Value, region)
		if normalized == "" {
			continue
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		valid = append(valid, normalized)
	}
	return valid
}

func (p *DataProcessor) validateSocials(ctx context.Context, socials map[string][]string, verify bool) SocialLinks {
	result := SocialLinks{}
	for platform, candidates := range socials {
		for _, raw := range candidates {
			sanitized, ok := p.cleanSocialLink(ctx, platform, raw, verify)
			if !ok {
				continue
			}
			result.set(platform, sanitized)
			break
		}
	}
	return result
}

func (p *DataProcessor) cleanSocialLink(ctx context.Context, platform, raw string, verify bool) (string, bool) {
	u, err := sanitizeURL(raw)
	if err != nil {
		return "", false
	}
	hostPlatform, ok := hostMatchesAllowed(u.Hostname())
	if !ok || hostPlatform != platform {
		return "", false
	}
	stripTracking(u)
	if verify && !p.urlResolves(ctx, u.String()) {
		return "", false
	}
	return u.String(), true
}

func (p *DataProcessor) hasMXRecord(ctx context.Context, domain string) bool {
	if p.dnsResolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, mxLookupTimeout)
	defer cancel()
	records, err := p.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

// urlResolves sends HEAD, retrying with GET when the server rejects HEAD.
func (p *DataProcessor) urlResolves(ctx context.Context, target string) bool {
	if p.httpClient == nil {
		return false
	}
	status, err := p.statusOf(ctx, http.MethodHead, target)
	if err == nil && status != http.StatusMethodNotAllowed {
		return status == http.StatusOK
	}
	status, err = p.statusOf(ctx, http.MethodGet, target)
	return err == nil && status == http.StatusOK
}

func (p *DataProcessor) statusOf(ctx context.Context, method, target string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func (links *SocialLinks) set(platform, value string) {
	switch platform {
	case "linkedin":
		links.LinkedIn = value
	case "facebook":
		links.Facebook = value
	case "instagram":
		links.Instagram = value
	case "twitter":
		links.Twitter = value
	case "youtube":
		links.Youtube = value
	case "tiktok":
		links.Tiktok = value
	}
}

func (links SocialLinks) asMap() map[string]string {
	return map[string]string{
		"linkedin":  links.LinkedIn,
		"facebook":  links.Facebook,
		"instagram": links.Instagram,
		"twitter":   links.Twitter,
		"youtube":   links.Youtube,
		"tiktok":    links.Tiktok,
	}
}

func hostMatchesAllowed(host string) (string, bool) {
	host = strings.ToLower(strings.Trim(strings.TrimSpace(host), "."))
	if host == "" {
		return "", false
	}
	for domain, platform := range allowedSocialDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return platform, true
		}
	}
	return "", false
}

func sanitizeContactForm(raw string) string {
	u, err := sanitizeURL(raw)
	if err != nil {
		return ""
	}
	stripTracking(u)
	return u.String()
}

func sanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty url")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, errors.New("invalid url")
	}
	u.Scheme = "https"
	return u, nil
}

func stripTracking(u *url.URL) {
	query := u.Query()
	changed := false
	for key := range query {
		if strings.HasPrefix(strings.ToLower(key), trackingPrefix) {
			query.Del(key)
			changed = true
		}
	}
	if changed {
		u.RawQuery = query.Encode()
	}
}

func normalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// selectBestAddress prefers the address with the most comma-separated parts,
// then the longest.
func selectBestAddress(addresses []string) string {
	var best string
	var bestScore int
	for _, raw := range addresses {
		addr := strings.TrimSpace(raw)
		if addr == "" {
			continue
		}
		segments := strings.FieldsFunc(addr, func(r rune) bool { return r == ',' || r == ';' })
		score := len(segments)*1000 + len([]rune(addr))
		if score > bestScore {
			bestScore = score
			best = addr
		}
	}
	return best
}

func isDomainValid(domain string) bool {
	if !strings.Contains(domain, ".") {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
