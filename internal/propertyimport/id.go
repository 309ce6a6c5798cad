package propertyimport

import (
	"strings"

	"github.com/MainePadFinder/padfinder/internal/scraper"
	"github.com/google/uuid"
)

func v5(ns uuid.UUID, name string) uuid.UUID {
	return uuid.NewSHA1(ns, []byte(name))
}

func canon(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// SourceKey identifies a unit across imports: the same street, city, state,
// zip and unit always map to the same key under one namespace.
func SourceKey(ns uuid.UUID, row scraper.Row) uuid.UUID {
	parts := []string{
		canon(row.Street),
		canon(row.City),
		canon(row.State),
		canon(row.Zip),
		canon(row.Unit),
	}
	return v5(ns, "property:"+strings.Join(parts, "|"))
}
