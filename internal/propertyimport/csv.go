package propertyimport

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MainePadFinder/padfinder/internal/scraper"
)

// ParseCSV reads a scraper export. Columns are matched by header name so a
// hand-edited file may reorder them.
func ParseCSV(path string) ([]scraper.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(bufio.NewReader(f))
}

func ReadCSV(in io.Reader) ([]scraper.Row, error) {
	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	col := map[string]int{}
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	order := make([]int, len(scraper.Header))
	for i, name := range scraper.Header {
		idx, ok := col[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("missing required column: %s", name)
		}
		order[i] = idx
	}

	var out []scraper.Row
	line := 1
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("csv read: %w", err)
		}

		cells := make([]string, len(order))
		for i, idx := range order {
			if idx < len(rec) {
				cells[i] = rec[idx]
			}
		}
		row, err := scraper.ParseRecord(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if err := validateRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		out = append(out, row)
	}

	if len(out) == 0 {
		return nil, errors.New("csv has no data rows")
	}
	return out, nil
}

func validateRow(row scraper.Row) error {
	switch {
	case row.Street == "":
		return errors.New("missing Street")
	case row.City == "":
		return errors.New("missing City")
	case len(row.State) != 2:
		return fmt.Errorf("state must be a 2-letter code, got %q", row.State)
	case row.Zip == "":
		return errors.New("missing Zipcode")
	}
	for name, v := range map[string]*int{"Rent": row.Rent, "SqFt": row.Sqft} {
		if v != nil && *v < 0 {
			return fmt.Errorf("negative %s", name)
		}
	}
	return nil
}
