package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "padscrape",
	Short: "Scrape rental listings and load them into PadFinder",
	Long: `padscrape collects rental listings from a search results page into a CSV
file and imports that CSV into the PadFinder database.

  padscrape scrape --url https://www.apartments.com/portland-me/ --out data/portland.csv
  padscrape import --csv data/portland.csv --namespace <uuid>`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(importCmd)
}
