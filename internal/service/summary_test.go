package service

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"

	"github.com/octobees/contact-scraper/internal/extractor"
)

type stubDNSResolver struct {
	mx    map[string]bool
	calls int
}

func (s *stubDNSResolver) LookupMX(_ context.Context, domain string) ([]*net.MX, error) {
	s.calls++
	if s.mx[domain] {
		return []*net.MX{{Host: "mx." + domain, Pref: 10}}, nil
	}
	return nil, errors.New("no mx")
}

type stubHTTPClient struct {
	responses map[string]int
	calls     []string
}

func (s *stubHTTPClient) Do(req *http.Request) (*http.Response, error) {
	key := req.Method + " " + req.URL.String()
	s.calls = append(s.calls, key)
	status, ok := s.responses[key]
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(""))}, nil
}

func sampleResult() *extractor.Result {
	return &extractor.Result{
		URL: "https://acme.io",
		Emails: []extractor.EmailEntry{
			{Value: "sales@acme.io"},
			{Value: "info@nomx.io"},
			{Value: "broken@"},
		},
		Phones: []extractor.PhoneEntry{
			{Value: "+91 9876543210", Type: extractor.PhoneIndian},
			{Value: "98765 43210", Type: extractor.PhoneIndian},
			{Value: "(415) 555-1234", Type: extractor.PhoneInternational},
		},
		Addresses: []extractor.AddressEntry{
			{Value: "12 High Street 40001"},
			{Value: "123 Main Street, Springfield, IL 62704"},
		},
		SocialMedia: []extractor.SocialEntry{
			{Platform: extractor.Linkedin, URL: "https://www.linkedin.com/company/acme?utm_source=site"},
			{Platform: extractor.Facebook, URL: "http://facebook.com/acme"},
			{Platform: extractor.Twitter, URL: "https://evil.example/acme"},
		},
		ContactForms: []extractor.ContactFormEntry{
			{URL: "https://acme.io/contact?utm_campaign=x", Method: "post", HasEmail: true},
		},
	}
}

func TestSummarizeWithoutVerification(t *testing.T) {
	resolver := &stubDNSResolver{}
	client := &stubHTTPClient{}
	p := NewDataProcessor("US", WithDNSResolver(resolver), WithHTTPClient(client))

	summary, err := p.Summarize(context.Background(), sampleResult(), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(summary.Emails) != 2 || summary.Emails[0] != "sales@acme.io" {
		t.Fatalf("unexpected emails %#v", summary.Emails)
	}
	if resolver.calls != 0 || len(client.calls) != 0 {
		t.Fatalf("no network checks expected without verify")
	}
	if len(summary.Phones) != 2 || summary.Phones[0] != "+919876543210" || summary.Phones[1] != "+14155551234" {
		t.Fatalf("unexpected phones %#v", summary.Phones)
	}
	if summary.Socials.LinkedIn != "https://www.linkedin.com/company/acme" {
		t.Fatalf("tracking should be stripped: %q", summary.Socials.LinkedIn)
	}
	if summary.Socials.Facebook != "https://facebook.com/acme" {
		t.Fatalf("scheme should be upgraded: %q", summary.Socials.Facebook)
	}
	if summary.Socials.Twitter != "" {
		t.Fatalf("disallowed host should be dropped: %q", summary.Socials.Twitter)
	}
	if summary.Address != "123 Main Street, Springfield, IL 62704" {
		t.Fatalf("unexpected address %q", summary.Address)
	}
	if summary.ContactFormURL != "https://acme.io/contact" {
		t.Fatalf("unexpected contact form %q", summary.ContactFormURL)
	}
	if summary.Score.Total == 0 || summary.Verified {
		t.Fatalf("unexpected score/verified %#v", summary)
	}
}

func TestSummarizeWithVerification(t *testing.T) {
	resolver := &stubDNSResolver{mx: map[string]bool{"acme.io": true}}
	client := &stubHTTPClient{responses: map[string]int{
		"HEAD https://www.linkedin.com/company/acme": http.StatusOK,
		"HEAD https://facebook.com/acme":             http.StatusMethodNotAllowed,
		"GET https://facebook.com/acme":              http.StatusOK,
	}}
	p := NewDataProcessor("US", WithDNSResolver(resolver), WithHTTPClient(client))

	summary, err := p.Summarize(context.Background(), sampleResult(), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Emails) != 1 || summary.Emails[0] != "sales@acme.io" {
		t.Fatalf("expected only the MX-backed email, got %#v", summary.Emails)
	}
	if summary.Socials.LinkedIn == "" || summary.Socials.Facebook == "" {
		t.Fatalf("expected verified socials, got %#v", summary.Socials)
	}
	if !summary.Verified {
		t.Fatalf("expected verified flag")
	}
}

func TestSummarizeRejectsMissingResult(t *testing.T) {
	if _, err := NewDataProcessor("").Summarize(context.Background(), nil, false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSelectBestAddressPrefersMostComplete(t *testing.T) {
	best := selectBestAddress([]string{"Short address", "Longer address, Suite 101", "", "Another, Address, Line, City"})
	if best != "Another, Address, Line, City" {
		t.Fatalf("unexpected best address %q", best)
	}
}
