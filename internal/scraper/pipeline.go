package scraper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Stats struct {
	RunID      uuid.UUID
	Pages      int
	Links      int
	Skipped    int
	Rows       int
	Duplicates int
	Written    int
}

// Deduper remembers rows by full-row equality.
type Deduper struct {
	seen map[string]struct{}
}

func NewDeduper(existing []Row) *Deduper {
	d := &Deduper{seen: make(map[string]struct{}, len(existing))}
	for _, row := range existing {
		d.seen[row.Key()] = struct{}{}
	}
	return d
}

// Add reports whether the row is new and remembers it.
func (d *Deduper) Add(row Row) bool {
	key := row.Key()
	if _, ok := d.seen[key]; ok {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

type Pipeline struct {
	Browser  Browser
	Sink     CSVSink
	MaxPages int
}

// DiscoverLinks walks search results from url, following the next-page
// control until it disappears, and returns unique links in first-seen order.
func (p *Pipeline) DiscoverLinks(ctx context.Context, url string) ([]string, int, error) {
	if err := p.Browser.Open(url); err != nil {
		return nil, 0, err
	}

	var links []string
	seen := map[string]bool{}
	pages := 0
	for {
		if err := ctx.Err(); err != nil {
			return links, pages, err
		}
		pages++

		found, err := p.Browser.ListingLinks()
		if err != nil {
			return links, pages, err
		}
		added := 0
		for _, link := range found {
			if link == "" || seen[link] {
				continue
			}
			seen[link] = true
			links = append(links, link)
			added++
		}
		LogPage(pages, url, added)

		if p.MaxPages > 0 && pages >= p.MaxPages {
			break
		}
		more, err := p.Browser.NextPage()
		if err != nil {
			return links, pages, err
		}
		if !more {
			break
		}
	}
	return links, pages, nil
}

// Extract visits each link and keeps rows not seen before. A listing whose
// page cannot be read or whose address cannot be parsed is skipped.
func (p *Pipeline) Extract(ctx context.Context, links []string, dedup *Deduper, stats *Stats) ([]Row, error) {
	var out []Row
	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return out, err
		}

		start := time.Now()
		raw, err := p.Browser.Detail(link)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return out, ctxErr
			}
			LogError("detail "+link, err)
			stats.Skipped++
			continue
		}

		rows, err := ParseDetail(raw)
		if err != nil {
			LogError("parse "+link, err)
			stats.Skipped++
			continue
		}

		kept := 0
		for _, row := range rows {
			stats.Rows++
			if !dedup.Add(row) {
				stats.Duplicates++
				continue
			}
			out = append(out, row)
			kept++
		}
		LogListing(link, len(rows), kept, time.Since(start))
	}
	return out, nil
}

// Run scrapes searchURL and appends new rows to the sink. Rows gathered
// before a cancellation are still written.
func (p *Pipeline) Run(ctx context.Context, searchURL string) (Stats, error) {
	start := time.Now()
	stats := Stats{RunID: uuid.New()}
	logf("run %s starting at %s", stats.RunID, searchURL)

	existing, err := p.Sink.Existing()
	if err != nil {
		return stats, err
	}
	dedup := NewDeduper(existing)

	links, pages, runErr := p.DiscoverLinks(ctx, searchURL)
	stats.Pages = pages
	stats.Links = len(links)
	logf("found %d listings", len(links))

	var rows []Row
	if runErr == nil {
		rows, runErr = p.Extract(ctx, links, dedup, &stats)
	}

	if len(rows) > 0 {
		if err := p.Sink.Append(rows); err != nil {
			return stats, errors.Join(runErr, err)
		}
	}
	stats.Written = len(rows)

	LogSummary(stats, time.Since(start))
	return stats, runErr
}
