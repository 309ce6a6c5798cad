package scraper

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// CSVSink appends rows to a scraper CSV, writing the header only when the
// file is new or empty.
type CSVSink struct {
	Path string
}

// ReadRows loads every data row from a scraper CSV and counts the records
// skipped for having the wrong column count.
func ReadRows(r io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var rows []Row
	skipped := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return rows, skipped, err
		}
		if IsHeader(rec) {
			continue
		}
		row, err := ParseRecord(rec)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

// Existing returns the rows already in the file; a missing file has none.
func (s CSVSink) Existing() ([]Row, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, skipped, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.Path, err)
	}
	if skipped > 0 {
		logf("skipped %d malformed rows in %s", skipped, s.Path)
	}
	return rows, nil
}

func (s CSVSink) Append(rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(s.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(Header); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := w.Write(row.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}
