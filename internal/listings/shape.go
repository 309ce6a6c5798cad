package listings

import (
	"strconv"
	"strings"
)

// listingRow is the flat result of the properties/addresses join.
type listingRow struct {
	ID        uint
	UnitLabel string
	RentCost  *int
	Bedrooms  *int
	Bathrooms *float64
	CanRent   bool
	Sqft      *int
	City      string
	StateCode string
	Street    string
	ZipCode   string
}

type Summary struct {
	ID           uint     `json:"id"`
	Title        string   `json:"title"`
	Rent         *int     `json:"rent"`
	Beds         *int     `json:"beds"`
	Baths        *float64 `json:"baths"`
	CanRent      bool     `json:"canRent"`
	Sqft         *int     `json:"sqft"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	AddressLine1 string   `json:"addressLine1"`
	AddressLine2 *string  `json:"addressLine2"`
	ZipCode      string   `json:"zipCode"`
}

type Deal struct {
	ID               uint     `json:"id"`
	Title            string   `json:"title"`
	Rent             *int     `json:"rent"`
	Beds             *int     `json:"beds"`
	Baths            *float64 `json:"baths"`
	CanRent          bool     `json:"canRent"`
	Sqft             *int     `json:"sqft"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	CityAvgRent      float64  `json:"cityAvgRent"`
	RentPctOfCityAvg float64  `json:"rentPctOfCityAvg"`
}

// Title is the unit label when present, otherwise built from bedroom and
// bathroom counts, otherwise "Untitled unit".
func Title(unitLabel string, beds *int, baths *float64) string {
	if strings.TrimSpace(unitLabel) != "" {
		return unitLabel
	}

	var pieces []string
	if beds != nil {
		pieces = append(pieces, strconv.Itoa(*beds)+" bed")
	}
	if baths != nil {
		pieces = append(pieces, strconv.FormatFloat(*baths, 'f', -1, 64)+" bath")
	}
	if len(pieces) == 0 {
		return "Untitled unit"
	}
	return strings.Join(pieces, " • ")
}

func toSummary(row listingRow) Summary {
	return Summary{
		ID:           row.ID,
		Title:        Title(row.UnitLabel, row.Bedrooms, row.Bathrooms),
		Rent:         row.RentCost,
		Beds:         row.Bedrooms,
		Baths:        row.Bathrooms,
		CanRent:      row.CanRent,
		Sqft:         row.Sqft,
		City:         row.City,
		State:        row.StateCode,
		AddressLine1: row.Street,
		ZipCode:      row.ZipCode,
	}
}

func toDeal(row DealRow) Deal {
	return Deal{
		ID:               row.PropertyID,
		Title:            Title(row.UnitLabel, row.Bedrooms, row.Bathrooms),
		Rent:             row.RentCost,
		Beds:             row.Bedrooms,
		Baths:            row.Bathrooms,
		CanRent:          row.CanRent,
		Sqft:             row.Sqft,
		City:             row.City,
		State:            row.StateCode,
		CityAvgRent:      row.CityAvgRent,
		RentPctOfCityAvg: row.RentPctOfCityAvg,
	}
}
