// Package scraper composes page acquisition and contact extraction into a
// single call.
package scraper

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/octobees/contact-scraper/internal/acquirer"
	"github.com/octobees/contact-scraper/internal/extractor"
)

// ErrInvalidURL is returned when the target is blank.
var ErrInvalidURL = errors.New("url is required")

// Fetcher retrieves the raw HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Scraper fetches a page and extracts its contacts.
type Scraper struct {
	fetcher   Fetcher
	extractor *extractor.Extractor
	now       func() time.Time
}

// Option configures optional dependencies.
type Option func(*Scraper)

// WithExtractor overrides the default extractor.
func WithExtractor(e *extractor.Extractor) Option {
	return func(s *Scraper) {
		if e != nil {
			s.extractor = e
		}
	}
}

// WithClock overrides the clock used to measure elapsed time.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) {
		if now != nil {
			s.now = now
		}
	}
}

// New builds a Scraper around fetcher.
func New(fetcher Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:   fetcher,
		extractor: extractor.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches url and returns the extracted contacts. Acquisition
// failures are returned as *acquirer.Error and produce no result.
func (s *Scraper) Scrape(ctx context.Context, url string) (*extractor.Result, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, ErrInvalidURL
	}

	start := s.now()
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		classified := acquirer.Classify(err)
		log.Warn().Err(classified.Err).Str("url", url).Str("kind", string(classified.Kind)).Msg("acquisition failed")
		return nil, classified
	}

	result := s.extractor.Extract(html, url)
	result.ScrapingTime = s.now().Sub(start).Milliseconds()
	result.Success = true

	log.Info().
		Str("url", url).
		Int("contacts", result.TotalContactsFound).
		Int64("elapsed_ms", result.ScrapingTime).
		Msg("scrape completed")
	return result, nil
}
