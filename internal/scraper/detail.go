package scraper

import (
	"strings"
)

type RawUnit struct {
	Label     string `json:"label"`
	Rent      string `json:"rent"`
	Sqft      string `json:"sqft"`
	Available string `json:"available"`
}

// RawUnitGroup is one floor plan: its "2 Beds\n1 Bath" caption and unit rows.
type RawUnitGroup struct {
	Details string    `json:"details"`
	Units   []RawUnit `json:"units"`
}

// RawDetail is the text pulled from a listing page before any parsing.
// Missing elements are empty strings.
type RawDetail struct {
	URL          string            `json:"url"`
	Address      string            `json:"address"`
	MultiUnit    bool              `json:"multiUnit"`
	Groups       []RawUnitGroup    `json:"groups"`
	PriceHeader  string            `json:"priceHeader"`
	PriceCaption string            `json:"priceCaption"`
	Info         map[string]string `json:"info"`
}

// ParseDetail turns a listing page into rows, dropping rows that have no
// unit, rent or square footage. An unparseable address is an error and the
// listing should be skipped.
func ParseDetail(raw RawDetail) ([]Row, error) {
	addr, err := ParseAddress(raw.Address)
	if err != nil {
		return nil, err
	}

	base := Row{Street: addr.Street, City: addr.City, State: addr.State, Zip: addr.Zip}

	var rows []Row
	if raw.MultiUnit {
		for _, g := range raw.Groups {
			lines := strings.Split(g.Details, "\n")
			beds := ParseBedrooms(lines[0])
			var baths *float64
			if len(lines) > 1 {
				baths = ParseBathrooms(lines[1])
			}

			for _, u := range g.Units {
				row := base
				row.Unit = normalizeText(u.Label)
				row.Rent = ParseRent(u.Rent)
				row.Sqft = ParseSqft(u.Sqft)
				row.Bedrooms = beds
				row.Bathrooms = baths
				row.Available = ParseAvailable(u.Available)
				rows = append(rows, row)
			}
		}
	} else {
		row := base
		row.Unit = addr.Unit
		rentText := raw.PriceHeader
		if raw.PriceCaption != "" {
			rentText = strings.Replace(rentText, raw.PriceCaption, "", 1)
		}
		row.Rent = ParseRent(rentText)
		row.Sqft = ParseSqft(infoValue(raw.Info, "Square Feet"))
		row.Bedrooms = ParseBedrooms(infoValue(raw.Info, "Bedrooms"))
		row.Bathrooms = ParseBathrooms(infoValue(raw.Info, "Bathrooms"))
		row.Available = ParseAvailable(infoValue(raw.Info, "Available"))
		rows = append(rows, row)
	}

	kept := rows[:0]
	for _, row := range rows {
		if !row.Empty() {
			kept = append(kept, row)
		}
	}
	return kept, nil
}

// infoValue looks up an info panel label ignoring case and spacing.
func infoValue(info map[string]string, label string) string {
	if v, ok := info[label]; ok {
		return v
	}
	for k, v := range info {
		if foldEqual(normalizeText(k), label) {
			return v
		}
	}
	return ""
}
