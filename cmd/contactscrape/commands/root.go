// Package commands implements the contactscrape CLI.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/octobees/contact-scraper/internal/acquirer"
	"github.com/octobees/contact-scraper/internal/config"
	"github.com/octobees/contact-scraper/internal/export"
	"github.com/octobees/contact-scraper/internal/extractor"
	"github.com/octobees/contact-scraper/internal/logging"
	"github.com/octobees/contact-scraper/internal/scraper"
)

const defaultRunTimeout = 45 * time.Second

type rootOptions struct {
	format        string
	output        string
	timeout       time.Duration
	primaryProxy  string
	fallbackProxy string
	attempts      int
	attemptWait   time.Duration
	backoff       time.Duration
	logLevel      string
}

// NewRootCmd builds the command tree. Flag defaults come from the same
// environment variables the API reads.
func NewRootCmd() *cobra.Command {
	fetchCfg, err := config.LoadFetch()
	if err != nil {
		fetchCfg = config.FetchConfig{
			PrimaryProxyURL:  acquirer.DefaultPrimaryProxy,
			FallbackProxyURL: acquirer.DefaultFallbackProxy,
			Attempts:         acquirer.DefaultAttempts,
			Timeout:          acquirer.DefaultTimeout,
			Backoff:          acquirer.DefaultBackoff,
		}
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "contactscrape <url>",
		Short: "Extract emails, phones, addresses, social profiles and contact forms from a web page",
		Long: `contactscrape fetches a page through the configured proxies and prints
the contact information found on it.

Examples:
  contactscrape https://acme.com/contact
  contactscrape acme.com --format csv -o contacts.csv
  contactscrape extract --file page.html --url https://acme.com/`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return logging.Setup(cmd.ErrOrStderr(), opts.logLevel, "console")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScrape(cmd, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.primaryProxy, "primary-proxy", fetchCfg.PrimaryProxyURL, "prefix proxy; the target URL is appended verbatim (empty fetches directly)")
	flags.StringVar(&opts.fallbackProxy, "fallback-proxy", fetchCfg.FallbackProxyURL, "wrapping proxy returning JSON {contents}")
	flags.IntVar(&opts.attempts, "attempts", fetchCfg.Attempts, "primary proxy attempts")
	flags.DurationVar(&opts.attemptWait, "attempt-timeout", fetchCfg.Timeout, "timeout per proxy request")
	flags.DurationVar(&opts.backoff, "backoff", fetchCfg.Backoff, "delay between primary attempts")
	flags.DurationVar(&opts.timeout, "timeout", defaultRunTimeout, "overall deadline for the scrape")

	persistent := cmd.PersistentFlags()
	persistent.StringVarP(&opts.format, "format", "f", string(export.FormatJSON), "output format: json, csv, yaml")
	persistent.StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	persistent.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	cmd.AddCommand(newExtractCmd(opts))
	return cmd
}

func runScrape(cmd *cobra.Command, opts *rootOptions, target string) error {
	format, err := export.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	fetcher := acquirer.New(acquirer.Config{
		PrimaryProxy:  opts.primaryProxy,
		FallbackProxy: opts.fallbackProxy,
		Attempts:      opts.attempts,
		Timeout:       opts.attemptWait,
		Backoff:       opts.backoff,
	})

	target = strings.TrimSpace(target)
	if target != "" && !strings.Contains(target, "://") {
		target = "https://" + target
	}
	result, err := scraper.New(fetcher).Scrape(ctx, target)
	if err != nil {
		return err
	}
	return writeResult(cmd, opts, format, result)
}

// writeResult prints result to stdout or to the --output file.
func writeResult(cmd *cobra.Command, opts *rootOptions, format export.Format, result *extractor.Result) error {
	var w io.Writer = cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := export.Write(w, format, result); err != nil {
		return fmt.Errorf("write %s: %w", format, err)
	}
	return nil
}
