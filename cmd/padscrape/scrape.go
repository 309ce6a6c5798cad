package main

import (
	"fmt"
	"log"

	"github.com/MainePadFinder/padfinder/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	scrapeURL      string
	scrapeOut      string
	scrapeConfig   string
	scrapeMaxPages int
	scrapeHeadful  bool
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape listing pages into a CSV file",
	Long: `Walks every page of search results, visits each listing and appends the
units it finds to the output CSV. Rows already in the file are not written
again, so the command can be re-run against the same output.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "search results URL (overrides config)")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "output CSV path (overrides config)")
	scrapeCmd.Flags().StringVar(&scrapeConfig, "config", "", "YAML scraper config")
	scrapeCmd.Flags().IntVar(&scrapeMaxPages, "max-pages", 0, "stop after this many result pages (0 = all)")
	scrapeCmd.Flags().BoolVar(&scrapeHeadful, "show-browser", false, "run Chrome with a visible window")
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg, err := scraper.LoadConfig(scrapeConfig)
	if err != nil {
		return err
	}
	if scrapeURL != "" {
		cfg.SearchURL = scrapeURL
	}
	if scrapeOut != "" {
		cfg.OutputPath = scrapeOut
	}
	if cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = scrapeMaxPages
	}
	if scrapeHeadful {
		cfg.Headless = false
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx := cmd.Context()
	browser, err := scraper.NewChromeBrowser(ctx, cfg)
	if err != nil {
		return err
	}
	defer browser.Close()

	p := &scraper.Pipeline{
		Browser:  browser,
		Sink:     scraper.CSVSink{Path: cfg.OutputPath},
		MaxPages: cfg.MaxPages,
	}
	stats, err := p.Run(ctx, cfg.SearchURL)
	if err != nil {
		if ctx.Err() != nil {
			log.Printf("[scraper] interrupted, kept %d rows", stats.Written)
		}
		return fmt.Errorf("scrape %s: %w", cfg.SearchURL, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d new rows to %s\n", stats.Written, cfg.OutputPath)
	return nil
}
