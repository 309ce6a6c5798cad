package scraper

import (
	"fmt"
	"strconv"
	"strings"
)

// Header is the first line of every scraper CSV.
var Header = []string{"Street", "City", "State", "Zipcode", "Unit", "Rent", "SqFt", "Bedrooms", "Bathrooms", "Available"}

// Row is one scraped unit. Nil numeric fields are written as empty cells.
type Row struct {
	Street    string
	City      string
	State     string
	Zip       string
	Unit      string
	Rent      *int
	Sqft      *int
	Bedrooms  *float64
	Bathrooms *float64
	Available bool
}

// Empty reports whether the row lacks unit, rent and square footage together.
func (r Row) Empty() bool {
	return strings.TrimSpace(r.Unit) == "" && r.Rent == nil && r.Sqft == nil
}

func (r Row) Record() []string {
	avail := "0"
	if r.Available {
		avail = "1"
	}
	return []string{
		r.Street,
		r.City,
		r.State,
		r.Zip,
		r.Unit,
		formatInt(r.Rent),
		formatInt(r.Sqft),
		formatFloat(r.Bedrooms),
		formatFloat(r.Bathrooms),
		avail,
	}
}

// Key identifies a row by its full CSV rendering.
func (r Row) Key() string {
	return recordKey(r.Record())
}

func recordKey(rec []string) string {
	return strings.Join(rec, "\x1f")
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ParseRecord reads a CSV record in Header order. Empty or non-numeric
// cells become nil.
func ParseRecord(rec []string) (Row, error) {
	if len(rec) != len(Header) {
		return Row{}, fmt.Errorf("expected %d columns, got %d", len(Header), len(rec))
	}
	cell := func(i int) string { return strings.TrimSpace(rec[i]) }

	return Row{
		Street:    cell(0),
		City:      cell(1),
		State:     cell(2),
		Zip:       cell(3),
		Unit:      cell(4),
		Rent:      parseIntCell(cell(5)),
		Sqft:      parseIntCell(cell(6)),
		Bedrooms:  parseFloatCell(cell(7)),
		Bathrooms: parseFloatCell(cell(8)),
		Available: cell(9) == "1" || strings.EqualFold(cell(9), "true"),
	}, nil
}

// parseIntCell also accepts "1200.0" as written by older exports.
func parseIntCell(s string) *int {
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	if f := parseFloatCell(s); f != nil {
		v := int(*f)
		return &v
	}
	return nil
}

func parseFloatCell(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// IsHeader reports whether rec is the header line.
func IsHeader(rec []string) bool {
	return len(rec) > 0 && strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")) == Header[0]
}
