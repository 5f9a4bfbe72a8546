// Package export serialises extraction results for download.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/octobees/contact-scraper/internal/extractor"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Header is the first CSV row.
var Header = []string{"Type", "Value", "Context/Platform", "Additional Info"}

// ParseFormat resolves a user-supplied format name. An empty name means JSON.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", name)
	}
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}

// Filename returns contacts-YYYY-MM-DD.<ext> for the given day.
func Filename(f Format, day time.Time) string {
	return fmt.Sprintf("contacts-%s.%s", day.Format("2006-01-02"), f)
}

// Rows flattens a result into CSV records, one per contact entry, in the
// order emails, phones, addresses, social profiles, contact forms.
func Rows(r *extractor.Result) [][]string {
	if r == nil {
		return nil
	}
	rows := make([][]string, 0, r.Count())
	for _, e := range r.Emails {
		rows = append(rows, []string{"Email", e.Value, e.Context, ""})
	}
	for _, p := range r.Phones {
		rows = append(rows, []string{"Phone", p.Value, p.Formatted, ""})
	}
	for _, a := range r.Addresses {
		rows = append(rows, []string{"Address", a.Value, a.Context, ""})
	}
	for _, s := range r.SocialMedia {
		rows = append(rows, []string{"Social Media", s.URL, string(s.Platform), s.Username})
	}
	for _, f := range r.ContactForms {
		rows = append(rows, []string{"Contact Form", f.URL, f.Method, strings.Join(formFeatures(f), ", ")})
	}
	return rows
}

func formFeatures(f extractor.ContactFormEntry) []string {
	features := make([]string, 0, 3)
	if f.HasEmail {
		features = append(features, "Email")
	}
	if f.HasPhone {
		features = append(features, "Phone")
	}
	if f.HasMessage {
		features = append(features, "Message")
	}
	return features
}

// WriteCSV writes the header and one record per contact entry.
func WriteCSV(w io.Writer, r *extractor.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(r)); err != nil {
		return err
	}
	return cw.Error()
}

// WriteJSON writes the result as indented JSON.
func WriteJSON(w io.Writer, r *extractor.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteYAML writes the result as YAML.
func WriteYAML(w io.Writer, r *extractor.Result) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return err
	}
	return enc.Close()
}

// Write dispatches on f.
func Write(w io.Writer, f Format, r *extractor.Result) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return fmt.Errorf("unsupported export format: %s", f)
	}
}
