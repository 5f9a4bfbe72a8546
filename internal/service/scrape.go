package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/octobees/contact-scraper/internal/acquirer"
	"github.com/octobees/contact-scraper/internal/dto"
	"github.com/octobees/contact-scraper/internal/entity"
	"github.com/octobees/contact-scraper/internal/extractor"
	"github.com/octobees/contact-scraper/internal/repository"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

var (
	ErrInvalidURL      = errors.New("url must be an absolute http or https address")
	ErrInvalidScrapeID = errors.New("invalid scrape id")
	ErrScrapeFailed    = errors.New("scrape did not produce a result")
)

// Scraper runs the fetch and extract pipeline for one URL.
type Scraper interface {
	Scrape(ctx context.Context, url string) (*extractor.Result, error)
}

// Actor identifies the authenticated caller.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the caller may see every user's scrapes.
func (a Actor) IsAdmin() bool {
	return a.Role == entity.RoleAdmin
}

// ScrapeService runs scrapes and manages their history.
type ScrapeService struct {
	scraper   Scraper
	repo      repository.ScrapesRepository
	processor *DataProcessor
	now       func() time.Time
}

// NewScrapeService wires the pipeline, the history store and the summary processor.
func NewScrapeService(scraper Scraper, repo repository.ScrapesRepository, processor *DataProcessor) *ScrapeService {
	return &ScrapeService{scraper: scraper, repo: repo, processor: processor, now: time.Now}
}

// Scrape runs the pipeline for rawURL and records the attempt. Acquisition
// failures are recorded too and returned as *acquirer.Error alongside the
// stored record.
func (s *ScrapeService) Scrape(ctx context.Context, actor Actor, rawURL string) (*entity.Scrape, error) {
	target, err := normalizeTargetURL(rawURL)
	if err != nil {
		return nil, err
	}

	started := s.now()
	result, scrapeErr := s.scraper.Scrape(ctx, target)

	record := &entity.Scrape{
		UserID:    actor.UserID,
		URL:       target,
		ScrapedAt: started.UTC(),
	}
	var classified *acquirer.Error
	if scrapeErr != nil {
		classified = acquirer.Classify(scrapeErr)
		kind, message := string(classified.Kind), classified.Error()
		record.ErrorKind = &kind
		record.ErrorMessage = &message
		record.ScrapingTimeMS = s.now().Sub(started).Milliseconds()
	} else {
		record.Success = true
		record.Result = result
		record.TotalContacts = result.TotalContactsFound
		record.ScrapingTimeMS = result.ScrapingTime
	}

	// The caller may have gone away; the attempt is still worth keeping.
	if err := s.repo.Create(context.WithoutCancel(ctx), record); err != nil {
		log.Error().Err(err).Str("url", target).Msg("persist scrape")
		return nil, fmt.Errorf("save scrape: %w", err)
	}

	if classified != nil {
		return record, classified
	}
	return record, nil
}

// List returns the caller's scrapes, or everyone's for admins.
func (s *ScrapeService) List(ctx context.Context, actor Actor, filter dto.ScrapeListFilter) ([]dto.ScrapeSummary, error) {
	if !actor.IsAdmin() {
		filter.UserID = actor.UserID.String()
	}
	filter.Q = strings.TrimSpace(filter.Q)
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = defaultPerPage
	}
	if filter.PerPage > maxPerPage {
		filter.PerPage = maxPerPage
	}

	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ScrapeSummary, 0, len(records))
	for _, r := range records {
		out = append(out, dto.ScrapeSummary{
			ID:             r.ID.String(),
			URL:            r.URL,
			Success:        r.Success,
			TotalContacts:  r.TotalContacts,
			ScrapingTimeMS: r.ScrapingTimeMS,
			ErrorKind:      r.ErrorKind,
			ScrapedAt:      r.ScrapedAt.UTC().Format(time.RFC3339),
		})
	}
	return out, nil
}

// Get loads a scrape visible to actor. Records owned by someone else are
// reported as not found.
func (s *ScrapeService) Get(ctx context.Context, actor Actor, id string) (*entity.Scrape, error) {
	scrapeID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrInvalidScrapeID
	}
	record, err := s.repo.FindByID(ctx, scrapeID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && record.UserID != actor.UserID {
		return nil, repository.ErrScrapeNotFound
	}
	return record, nil
}

// Delete removes a scrape visible to actor.
func (s *ScrapeService) Delete(ctx context.Context, actor Actor, id string) error {
	record, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, record.ID)
}

// Summary cleans and scores a successful scrape.
func (s *ScrapeService) Summary(ctx context.Context, actor Actor, id string, verify bool) (*ContactSummary, error) {
	record, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !record.Success || record.Result == nil {
		return nil, ErrScrapeFailed
	}
	summary, err := s.processor.Summarize(ctx, record.Result, verify)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// normalizeTargetURL adds https:// to bare hosts and rejects anything that is
// not an absolute http(s) URL.
func normalizeTargetURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}
	return u.String(), nil
}
