package listings

import (
	"sort"
)

type Trend string

const (
	TrendUp               Trend = "up"
	TrendDown             Trend = "down"
	TrendInsufficientData Trend = "insufficient_data"
)

// ClassifyTrend compares the price of the most recent history entry with the
// one before it. A rise is up; an unchanged or lower price is down.
func ClassifyTrend(history []PriceHistory) Trend {
	if len(history) < 2 {
		return TrendInsufficientData
	}

	sorted := make([]PriceHistory, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceStart.After(sorted[j].PriceStart)
	})

	if sorted[0].Price > sorted[1].Price {
		return TrendUp
	}
	return TrendDown
}
