package scraper

import (
	"log"
	"time"
)

func logf(format string, args ...any) {
	log.Printf("[scraper] "+format, args...)
}

// LogPage logs a search-results page visit.
func LogPage(page int, url string, newLinks int) {
	logf("page %d %s new_links=%d", page, url, newLinks)
}

// LogListing logs a detail page extraction.
func LogListing(url string, rows, kept int, duration time.Duration) {
	logf("listing %s rows=%d kept=%d duration=%dms", url, rows, kept, duration.Milliseconds())
}

// LogError logs a failed operation that the run recovers from.
func LogError(operation string, err error) {
	logf("%s error: %v", operation, err)
}

// LogSummary logs the totals of a finished run.
func LogSummary(s Stats, duration time.Duration) {
	logf("run %s done: pages=%d links=%d skipped=%d rows=%d duplicates=%d written=%d in %dms",
		s.RunID, s.Pages, s.Links, s.Skipped, s.Rows, s.Duplicates, s.Written, duration.Milliseconds())
}
