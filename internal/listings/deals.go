package listings

import (
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"
)

const maxDeals = 50

// dealsQuery reads the view already ordered and capped; rankDeals re-applies
// the same ordering so the response never depends on the view's tie-breaking.
func dealsQuery(tx *gorm.DB, city string) *gorm.DB {
	q := tx.Model(&DealRow{})
	if city = strings.TrimSpace(city); city != "" {
		q = q.Where("city ILIKE ?", "%"+escapeLike(city)+"%")
	}
	return q.Order("rent_pct_of_city_avg ASC").Order("rent_cost ASC").Limit(maxDeals)
}

// rankDeals sorts by percentage of city average, then by rent, keeping input
// order for exact ties, and caps the result.
func rankDeals(rows []DealRow) []DealRow {
	ranked := make([]DealRow, len(rows))
	copy(ranked, rows)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.RentPctOfCityAvg != b.RentPctOfCityAvg {
			return a.RentPctOfCityAvg < b.RentPctOfCityAvg
		}
		return rentOrInf(a.RentCost) < rentOrInf(b.RentCost)
	})

	if len(ranked) > maxDeals {
		ranked = ranked[:maxDeals]
	}
	return ranked
}

func rentOrInf(rent *int) float64 {
	if rent == nil {
		return math.Inf(1)
	}
	return float64(*rent)
}
