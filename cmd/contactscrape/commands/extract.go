package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/octobees/contact-scraper/internal/export"
	"github.com/octobees/contact-scraper/internal/extractor"
)

func newExtractCmd(opts *rootOptions) *cobra.Command {
	var (
		file    string
		baseURL string
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the extractor on a saved HTML file without touching the network",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := export.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			html, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("read html: %w", err)
			}

			start := time.Now()
			result := extractor.Extract(string(html), baseURL)
			result.ScrapingTime = time.Since(start).Milliseconds()

			return writeResult(cmd, opts, format, result)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "path to an HTML file (required)")
	cmd.Flags().StringVar(&baseURL, "url", "", "page URL used to resolve relative form actions")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
