package listings

import (
	"fmt"
	"net/url"
	"strings"

	"gorm.io/gorm"
)

// Filter narrows a listing search. Every field is optional and numeric
// bounds are inclusive.
type Filter struct {
	City     string `json:"city"`
	MinRent  Number `json:"minRent"`
	MaxRent  Number `json:"maxRent"`
	MinBeds  Number `json:"minBeds"`
	MinBaths Number `json:"minBaths"`
}

var filterNumberFields = []string{"minRent", "maxRent", "minBeds", "minBaths"}

// ParseFilterQuery reads a Filter from URL query parameters.
func ParseFilterQuery(q url.Values) (Filter, error) {
	f := Filter{City: strings.TrimSpace(q.Get("city"))}

	fields := []struct {
		name string
		dst  *Number
	}{
		{"minRent", &f.MinRent},
		{"maxRent", &f.MaxRent},
		{"minBeds", &f.MinBeds},
		{"minBaths", &f.MinBaths},
	}
	for _, fld := range fields {
		if err := fld.dst.parse(q.Get(fld.name)); err != nil {
			return Filter{}, fmt.Errorf("%s must be a number", fld.name)
		}
	}
	return f, nil
}

// Scope applies the filter to a query over properties p joined with addresses a.
// Bounds on the integer rent and bedroom columns are rounded inward so a
// fractional bound stays inclusive of exactly the values it admits.
func (f Filter) Scope(tx *gorm.DB) *gorm.DB {
	if city := strings.TrimSpace(f.City); city != "" {
		tx = tx.Where("a.city ILIKE ?", "%"+escapeLike(city)+"%")
	}
	if f.MinRent.Valid {
		tx = tx.Where("p.rent_cost >= ?", f.MinRent.CeilInt())
	}
	if f.MaxRent.Valid {
		tx = tx.Where("p.rent_cost <= ?", f.MaxRent.FloorInt())
	}
	if f.MinBeds.Valid {
		tx = tx.Where("p.bedrooms >= ?", f.MinBeds.CeilInt())
	}
	if f.MinBaths.Valid {
		tx = tx.Where("p.bathrooms >= ?", f.MinBaths.Value)
	}
	return tx
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
