package extractor

import "time"

// Per-kind output caps. Applied after deduplication.
const (
	MaxEmails    = 20
	MaxPhones    = 10
	MaxAddresses = 5
	MaxSocial    = 15
	MaxForms     = 5
)

// PhoneType classifies a phone number by numbering plan.
type PhoneType string

const (
	PhoneIndian        PhoneType = "Indian"
	PhoneInternational PhoneType = "International"
)

// Platform names a supported social network, title-cased for display.
type Platform string

const (
	Facebook  Platform = "Facebook"
	Twitter   Platform = "Twitter"
	Instagram Platform = "Instagram"
	Linkedin  Platform = "Linkedin"
	Youtube   Platform = "Youtube"
	Tiktok    Platform = "Tiktok"
)

// AddressContext is the fixed context label attached to every address.
const AddressContext = "Physical Address"

// EmailEntry is an email address with a snippet of the text around it.
type EmailEntry struct {
	Value   string `json:"value" yaml:"value"`
	Context string `json:"context" yaml:"context"`
}

// PhoneEntry is a phone number as matched plus a display form.
type PhoneEntry struct {
	Value     string    `json:"value" yaml:"value"`
	Formatted string    `json:"formatted" yaml:"formatted"`
	Type      PhoneType `json:"type" yaml:"type"`
}

// AddressEntry is a street address.
type AddressEntry struct {
	Value   string `json:"value" yaml:"value"`
	Context string `json:"context" yaml:"context"`
}

// SocialEntry is a profile link on one of the supported platforms.
type SocialEntry struct {
	Platform Platform `json:"platform" yaml:"platform"`
	URL      string   `json:"url" yaml:"url"`
	Username string   `json:"username" yaml:"username"`
}

// ContactFormEntry describes a form that looks like a contact form.
type ContactFormEntry struct {
	URL        string `json:"url" yaml:"url"`
	Method     string `json:"method" yaml:"method"`
	HasEmail   bool   `json:"hasEmail" yaml:"hasEmail"`
	HasPhone   bool   `json:"hasPhone" yaml:"hasPhone"`
	HasMessage bool   `json:"hasMessage" yaml:"hasMessage"`
}

// Result aggregates everything found on one page.
type Result struct {
	URL                string             `json:"url" yaml:"url"`
	Timestamp          time.Time          `json:"timestamp" yaml:"timestamp"`
	Emails             []EmailEntry       `json:"emails" yaml:"emails"`
	Phones             []PhoneEntry       `json:"phones" yaml:"phones"`
	Addresses          []AddressEntry     `json:"addresses" yaml:"addresses"`
	SocialMedia        []SocialEntry      `json:"socialMedia" yaml:"socialMedia"`
	ContactForms       []ContactFormEntry `json:"contactForms" yaml:"contactForms"`
	TotalContactsFound int                `json:"totalContactsFound" yaml:"totalContactsFound"`
	// ScrapingTime is the elapsed milliseconds across fetch and extraction.
	ScrapingTime int64 `json:"scrapingTime" yaml:"scrapingTime"`
	Success      bool  `json:"success" yaml:"success"`
}

// Count returns the sum of all entry sequences.
func (r *Result) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Emails) + len(r.Phones) + len(r.Addresses) + len(r.SocialMedia) + len(r.ContactForms)
}
