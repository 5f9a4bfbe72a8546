package dto

// ScrapeRequest is the payload used by the scraping endpoint.
type ScrapeRequest struct {
	URL string `json:"url"`
}

// ScrapeListFilter contains query parameters for the scrape history endpoint.
type ScrapeListFilter struct {
	UserID  string
	Q       string
	Success *bool
	Page    int
	PerPage int
}

// ScrapeSummary is the list view of a scrape record without its result payload.
type ScrapeSummary struct {
	ID             string  `json:"id"`
	URL            string  `json:"url"`
	Success        bool    `json:"success"`
	TotalContacts  int     `json:"total_contacts"`
	ScrapingTimeMS int64   `json:"scraping_time_ms"`
	ErrorKind      *string `json:"error_kind,omitempty"`
	ScrapedAt      string  `json:"scraped_at"`
}
