package propertyimport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/MainePadFinder/padfinder/internal/scraper"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

type Config struct {
	CSVPath     string
	DatabaseURL string
	// Namespace seeds every source key. It must stay the same forever or
	// re-imports will duplicate properties.
	Namespace    string
	DryRun       bool
	AdvisoryLock int64
	LandlordID   *uint
}

// Result counts what an import did. In a dry run only Rows and Units are set.
type Result struct {
	Rows         int
	Units        int
	Addresses    int
	Inserted     int
	Updated      int
	PriceChanges int
}

// Unit is one property to upsert, already keyed.
type Unit struct {
	Key uuid.UUID
	Row scraper.Row
}

// Plan keys rows and collapses repeats of the same unit; the last row wins.
func Plan(ns uuid.UUID, rows []scraper.Row) []Unit {
	pos := map[uuid.UUID]int{}
	var units []Unit
	for _, row := range rows {
		row.State = strings.ToUpper(row.State)
		key := SourceKey(ns, row)
		if i, ok := pos[key]; ok {
			units[i].Row = row
			continue
		}
		pos[key] = len(units)
		units = append(units, Unit{Key: key, Row: row})
	}
	return units
}

func Run(ctx context.Context, cfg Config) (Result, error) {
	var res Result

	ns, err := uuid.Parse(cfg.Namespace)
	if err != nil {
		return res, fmt.Errorf("invalid namespace uuid: %w", err)
	}

	rows, err := ParseCSV(cfg.CSVPath)
	if err != nil {
		return res, err
	}
	units := Plan(ns, rows)
	res.Rows = len(rows)
	res.Units = len(units)
	log.Printf("[import] loaded %d rows (%d distinct units) from %s", res.Rows, res.Units, cfg.CSVPath)

	if cfg.DryRun {
		log.Printf("[import] dry run, no changes made")
		return res, nil
	}
	if cfg.DatabaseURL == "" {
		return res, errors.New("database URL is required")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return res, fmt.Errorf("connect: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return res, fmt.Errorf("ping: %w", err)
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if cfg.AdvisoryLock != 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, cfg.AdvisoryLock); err != nil {
			return res, fmt.Errorf("advisory lock: %w", err)
		}
	}

	res, err = importUnits(ctx, tx, units, cfg.LandlordID, res)
	if err != nil {
		return res, err
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	log.Printf("[import] done: addresses=%d inserted=%d updated=%d price_changes=%d",
		res.Addresses, res.Inserted, res.Updated, res.PriceChanges)
	return res, nil
}

func importUnits(ctx context.Context, tx *sql.Tx, units []Unit, landlordID *uint, res Result) (Result, error) {
	now := time.Now().UTC()
	addrIDs := map[string]int64{}

	for _, u := range units {
		addrKey := strings.Join([]string{u.Row.Street, u.Row.City, u.Row.State, u.Row.Zip}, "|")
		addrID, ok := addrIDs[addrKey]
		if !ok {
			id, err := upsertAddress(ctx, tx, u.Row)
			if err != nil {
				return res, fmt.Errorf("upsert address %q: %w", u.Row.Street, err)
			}
			addrIDs[addrKey] = id
			addrID = id
			res.Addresses++
		}

		inserted, priceChanged, err := upsertProperty(ctx, tx, u, addrID, landlordID, now)
		if err != nil {
			return res, fmt.Errorf("upsert property %s unit %q: %w", u.Row.Street, u.Row.Unit, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Updated++
		}
		if priceChanged {
			res.PriceChanges++
		}
	}
	return res, nil
}

func upsertAddress(ctx context.Context, tx *sql.Tx, row scraper.Row) (int64, error) {
	var id int64
	q := `INSERT INTO housing.addresses (street, city, state_code, zip_code)
	      VALUES ($1, $2, $3, $4)
	      ON CONFLICT (street, city, state_code, zip_code) DO UPDATE SET street = EXCLUDED.street
	      RETURNING id`
	err := tx.QueryRowContext(ctx, q, row.Street, row.City, row.State, row.Zip).Scan(&id)
	return id, err
}

// upsertProperty inserts or updates the unit keyed by its source key and
// records a price-history row whenever the rent is new or has changed.
func upsertProperty(ctx context.Context, tx *sql.Tx, u Unit, addrID int64, landlordID *uint, now time.Time) (inserted, priceChanged bool, err error) {
	var (
		propID   int64
		prevRent sql.NullInt64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT id, rent_cost FROM housing.properties WHERE source_key = $1 FOR UPDATE`, u.Key,
	).Scan(&propID, &prevRent)

	rent := nullInt(u.Row.Rent)
	sqft := nullInt(u.Row.Sqft)
	beds := nullRounded(u.Row.Bedrooms)
	baths := nullFloat(u.Row.Bathrooms)
	landlord := nullUint(landlordID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		inserted = true
		err = tx.QueryRowContext(ctx, `INSERT INTO housing.properties
			(addr_id, landlord_id, unit_label, rent_cost, sqft, bedrooms, bathrooms, can_rent, source_key, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
			RETURNING id`,
			addrID, landlord, u.Row.Unit, rent, sqft, beds, baths, u.Row.Available, u.Key, now,
		).Scan(&propID)
		if err != nil {
			return inserted, false, err
		}
	case err != nil:
		return false, false, err
	default:
		_, err = tx.ExecContext(ctx, `UPDATE housing.properties
			SET addr_id = $2, landlord_id = COALESCE($3, landlord_id), unit_label = $4, rent_cost = $5,
			    sqft = $6, bedrooms = $7, bathrooms = $8, can_rent = $9, updated_at = $10
			WHERE id = $1`,
			propID, addrID, landlord, u.Row.Unit, rent, sqft, beds, baths, u.Row.Available, now,
		)
		if err != nil {
			return false, false, err
		}
	}

	if !RentChanged(prevRent, u.Row.Rent) {
		return inserted, false, nil
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO housing.prop_price_history (property_id, price, price_start) VALUES ($1, $2, $3)`,
		propID, *u.Row.Rent, now,
	)
	return inserted, err == nil, err
}

// RentChanged reports whether a new rent should open a price-history entry.
// An unknown new rent never does.
func RentChanged(prev sql.NullInt64, next *int) bool {
	if next == nil {
		return false
	}
	return !prev.Valid || prev.Int64 != int64(*next)
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullRounded(v *float64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(math.Round(*v)), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullUint(v *uint) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
