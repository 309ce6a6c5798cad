package listings

import (
	"log"

	"github.com/MainePadFinder/padfinder/internal/db"
)

// bestDealsViewSQL ranks each priced unit against the average rent of
// its city. rent_pct_of_city_avg is 100 for a unit priced exactly at average.
const bestDealsViewSQL = `
CREATE OR REPLACE VIEW housing.best_deal_properties AS
SELECT p.id AS property_id,
       p.unit_label,
       p.rent_cost,
       p.bedrooms,
       p.bathrooms,
       p.can_rent,
       p.sqft,
       a.city,
       a.state_code,
       c.city_avg_rent,
       ROUND((p.rent_cost * 100.0 / c.city_avg_rent)::numeric, 2)::float8 AS rent_pct_of_city_avg
FROM housing.properties p
JOIN housing.addresses a ON a.id = p.addr_id
JOIN (
    SELECT a2.city, AVG(p2.rent_cost)::float8 AS city_avg_rent
    FROM housing.properties p2
    JOIN housing.addresses a2 ON a2.id = p2.addr_id
    WHERE p2.rent_cost IS NOT NULL
    GROUP BY a2.city
) c ON c.city = a.city
WHERE p.rent_cost IS NOT NULL AND c.city_avg_rent > 0`

func Init() {
	if err := db.EnsureSchema(db.DB, "housing"); err != nil {
		log.Fatal("Failed to ensure schema housing: ", err)
	}

	if err := db.DB.AutoMigrate(&Address{}, &Property{}, &Review{}, &PriceHistory{}); err != nil {
		log.Fatal("Failed to auto-migrate housing tables: ", err)
	}

	if err := db.DB.Exec(bestDealsViewSQL).Error; err != nil {
		log.Fatal("Failed to create best_deal_properties view: ", err)
	}
}
