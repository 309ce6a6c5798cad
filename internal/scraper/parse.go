package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var ErrBadAddress = errors.New("unrecognized address")

// normalizeText folds compatibility characters (non-breaking spaces,
// full-width digits) and collapses runs of whitespace.
func normalizeText(s string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(s)), " ")
}

func foldEqual(a, b string) bool {
	fold := cases.Fold()
	return fold.String(a) == fold.String(b)
}

var (
	afterZip  = regexp.MustCompile(`(\d{5})(?:-\d{4})?[^,]*$`)
	unitSplit = regexp.MustCompile(`(?i)\s+unit\s+`)
)

type Address struct {
	Street string
	Unit   string
	City   string
	State  string
	Zip    string
}

// ParseAddress reads "Street [Unit X], City, ST 12345" from the address
// block. Lines reading "Property Website" are ignored and anything after the
// zip code in the final segment is dropped.
func ParseAddress(block string) (Address, error) {
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		line = normalizeText(line)
		if line == "" || foldEqual(line, "Property Website") {
			continue
		}
		lines = append(lines, line)
	}
	text := afterZip.ReplaceAllString(strings.Join(lines, " "), "$1")

	parts := strings.Split(text, ",")
	if len(parts) != 3 {
		return Address{}, fmt.Errorf("%w: %q", ErrBadAddress, text)
	}

	var addr Address
	streetParts := unitSplit.Split(strings.TrimSpace(parts[0]), 2)
	addr.Street = strings.TrimSpace(streetParts[0])
	if len(streetParts) == 2 {
		addr.Unit = strings.TrimSpace(streetParts[1])
	}
	addr.City = strings.TrimSpace(parts[1])

	stateZip := strings.Fields(parts[2])
	if len(stateZip) != 2 || addr.Street == "" || addr.City == "" {
		return Address{}, fmt.Errorf("%w: %q", ErrBadAddress, text)
	}
	addr.State = stateZip[0]
	addr.Zip = stateZip[1]
	return addr, nil
}

// ParseRent strips "$" and "," and parses an integer. Ranges and text such
// as "Call for Rent" yield nil.
func ParseRent(s string) *int {
	s = strings.NewReplacer("$", "", ",", "").Replace(normalizeText(s))
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &v
}

// ParseSqft parses the first token of "1,050 sq ft".
func ParseSqft(s string) *int {
	fields := strings.Fields(strings.ReplaceAll(normalizeText(s), ",", ""))
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil
	}
	return &v
}

// ParseBedrooms maps "Studio" to 0 and otherwise reads the leading number.
func ParseBedrooms(s string) *float64 {
	s = normalizeText(s)
	if foldEqual(s, "Studio") {
		zero := 0.0
		return &zero
	}
	return leadingNumber(s)
}

func ParseBathrooms(s string) *float64 {
	return leadingNumber(normalizeText(s))
}

func leadingNumber(s string) *float64 {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return nil
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return nil
	}
	return &v
}

// ParseAvailable is true only for "now" and "available now", in any case.
func ParseAvailable(s string) bool {
	s = normalizeText(s)
	return foldEqual(s, "now") || foldEqual(s, "available now")
}
