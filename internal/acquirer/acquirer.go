// Package acquirer retrieves raw page HTML through a forwarding proxy, with
// bounded retries and a JSON-wrapping fallback proxy.
package acquirer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"
)

const (
	DefaultPrimaryProxy  = "https://cors-anywhere.herokuapp.com/"
	DefaultFallbackProxy = "https://api.allorigins.win/get?url="
	DefaultUserAgent     = "Mozilla/5.0 (compatible; ContactScraper/1.0)"
	DefaultAttempts      = 2
	DefaultTimeout       = 15 * time.Second
	DefaultBackoff       = time.Second

	maxBodyBytes = 10 << 20
)

// Config holds the proxy endpoints and retry policy. An empty PrimaryProxy
// fetches the target directly; an empty FallbackProxy disables the fallback.
type Config struct {
	PrimaryProxy  string
	FallbackProxy string
	Attempts      int
	Timeout       time.Duration
	Backoff       time.Duration
	UserAgent     string
}

// DefaultConfig returns the public proxy endpoints and retry defaults.
func DefaultConfig() Config {
	return Config{
		PrimaryProxy:  DefaultPrimaryProxy,
		FallbackProxy: DefaultFallbackProxy,
		Attempts:      DefaultAttempts,
		Timeout:       DefaultTimeout,
		Backoff:       DefaultBackoff,
		UserAgent:     DefaultUserAgent,
	}
}

// HTTPClient abstracts outbound requests for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Acquirer fetches page content. It is safe for concurrent use.
type Acquirer struct {
	cfg      Config
	primary  HTTPClient
	fallback HTTPClient
}

// Option configures optional dependencies.
type Option func(*Acquirer)

// WithPrimaryClient sets the client for the primary proxy only. Credentialed
// clients belong here; the fallback proxy is a third party.
func WithPrimaryClient(client HTTPClient) Option {
	return func(a *Acquirer) {
		if client != nil {
			a.primary = client
		}
	}
}

// WithFallbackClient sets the client for the fallback proxy only.
func WithFallbackClient(client HTTPClient) Option {
	return func(a *Acquirer) {
		if client != nil {
			a.fallback = client
		}
	}
}

// New builds an Acquirer. Zero values in cfg are replaced by defaults, except
// the proxy endpoints which are taken as given.
func New(cfg Config, opts ...Option) *Acquirer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = DefaultAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	a := &Acquirer{
		cfg:      cfg,
		primary:  http.DefaultClient,
		fallback: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch returns the HTML of target. The primary proxy is tried up to
// Attempts times with a fixed backoff, then the fallback proxy once. On
// failure the returned error is an *Error classified from the last cause.
func (a *Acquirer) Fetch(ctx context.Context, target string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= a.cfg.Attempts; attempt++ {
		body, err := a.fetchPrimary(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Debug().Err(err).Str("url", target).Int("attempt", attempt).Msg("primary fetch failed")

		if ctx.Err() != nil {
			return "", Classify(ctx.Err())
		}
		if attempt < a.cfg.Attempts {
			if err := sleep(ctx, a.cfg.Backoff); err != nil {
				return "", Classify(err)
			}
		}
	}

	if a.cfg.FallbackProxy != "" {
		body, err := a.fetchFallback(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
		log.Debug().Err(err).Str("url", target).Msg("fallback fetch failed")
	}

	return "", Classify(lastErr)
}

func (a *Acquirer) fetchPrimary(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.PrimaryProxy+target, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := a.primary.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(strings.ToLower(contentType), "json") {
		return "", errUnusableBody
	}

	body, err := readBody(resp.Body, contentType)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", errUnusableBody
	}
	return body, nil
}

type fallbackPayload struct {
	Contents string `json:"contents"`
	Status   struct {
		HTTPCode int `json:"http_code"`
	} `json:"status"`
}

func (a *Acquirer) fetchFallback(ctx context.Context, target string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.FallbackProxy+url.QueryEscape(target), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", a.cfg.UserAgent)

	resp, err := a.fallback.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	var payload fallbackPayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return "", errors.Join(errUnusableBody, err)
	}
	if strings.TrimSpace(payload.Contents) == "" {
		if payload.Status.HTTPCode >= 400 {
			return "", &StatusError{Code: payload.Status.HTTPCode}
		}
		return "", errUnusableBody
	}
	return payload.Contents, nil
}

// readBody decodes the response to UTF-8 using the declared or sniffed charset.
func readBody(r io.Reader, contentType string) (string, error) {
	limited := io.LimitReader(r, maxBodyBytes)
	decoded, err := charset.NewReader(limited, contentType)
	if errors.Is(err, io.EOF) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	raw, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
