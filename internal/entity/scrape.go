package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/octobees/contact-scraper/internal/extractor"
)

// Scrape is a persisted scrape attempt. Failed attempts carry the error kind
// and message instead of a result.
type Scrape struct {
	ID             uuid.UUID         `json:"id"`
	UserID         uuid.UUID         `json:"user_id"`
	URL            string            `json:"url"`
	Success        bool              `json:"success"`
	TotalContacts  int               `json:"total_contacts"`
	ScrapingTimeMS int64             `json:"scraping_time_ms"`
	Result         *extractor.Result `json:"result,omitempty"`
	ErrorKind      *string           `json:"error_kind,omitempty"`
	ErrorMessage   *string           `json:"error_message,omitempty"`
	ScrapedAt      time.Time         `json:"scraped_at"`
	CreatedAt      time.Time         `json:"created_at"`
}
