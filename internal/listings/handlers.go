package listings

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

func searchQuery(tx *gorm.DB, f Filter) *gorm.DB {
	return tx.Table("housing.properties AS p").
		Select("p.id, p.unit_label, p.rent_cost, p.bedrooms, p.bathrooms, p.can_rent, p.sqft, " +
			"a.city, a.state_code, a.street, a.zip_code").
		Joins("JOIN housing.addresses AS a ON a.id = p.addr_id").
		Scopes(f.Scope).
		Order("p.id")
}

// SearchHandler serves GET (query parameters) and POST (JSON body) searches.
func SearchHandler(w http.ResponseWriter, r *http.Request) {
	var f Filter
	if r.Method == http.MethodGet {
		parsed, err := ParseFilterQuery(r.URL.Query())
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		f = parsed
	} else if err := decodeWithNumbers(w, r, &f, true, filterNumberFields...); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := time.Now()
	var rows []listingRow
	if err := searchQuery(db.DB.WithContext(r.Context()), f).Find(&rows).Error; err != nil {
		log.Printf("[listings] search: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load properties")
		return
	}
	utils.AddServerTiming(w, "db", time.Since(start))

	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummary(row))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

type dealsRequest struct {
	City string `json:"city"`
}

func DealsHandler(w http.ResponseWriter, r *http.Request) {
	var req dealsRequest
	if r.Method == http.MethodGet {
		req.City = r.URL.Query().Get("city")
	} else if err := utils.DecodeOptionalJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	start := time.Now()
	var rows []DealRow
	if err := dealsQuery(db.DB.WithContext(r.Context()), req.City).Find(&rows).Error; err != nil {
		log.Printf("[listings] deals: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load best deals")
		return
	}
	utils.AddServerTiming(w, "db", time.Since(start))

	ranked := rankDeals(rows)
	out := make([]Deal, 0, len(ranked))
	for _, row := range ranked {
		out = append(out, toDeal(row))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

type detailRow struct {
	listingRow
	AvgRating     *float64
	ReviewCount   int64
	LandlordName  *string
	LandlordEmail *string
	LandlordPhone *string
}

type Detail struct {
	ID            uint     `json:"id"`
	Title         string   `json:"title"`
	UnitLabel     string   `json:"unitLabel"`
	Rent          *int     `json:"rent"`
	Beds          *int     `json:"beds"`
	Baths         *float64 `json:"baths"`
	Sqft          *int     `json:"sqft"`
	CanRent       bool     `json:"canRent"`
	AddressLine1  string   `json:"addressLine1"`
	City          string   `json:"city"`
	State         string   `json:"state"`
	Zip           string   `json:"zip"`
	AvgRating     *float64 `json:"avgRating"`
	ReviewCount   int64    `json:"reviewCount"`
	LandlordName  *string  `json:"landlordName"`
	LandlordEmail *string  `json:"landlordEmail"`
	LandlordPhone *string  `json:"landlordPhone"`
	PriceTrend    Trend    `json:"priceTrend"`
}

const detailSQL = `
SELECT p.id, p.unit_label, p.rent_cost, p.bedrooms, p.bathrooms, p.can_rent, p.sqft,
       a.city, a.state_code, a.street, a.zip_code,
       (SELECT AVG(r.stars)::float8 FROM housing.reviews r WHERE r.property_id = p.id) AS avg_rating,
       (SELECT COUNT(*) FROM housing.reviews r WHERE r.property_id = p.id) AS review_count,
       COALESCE(NULLIF(u.display_name, ''), u.username) AS landlord_name,
       u.email AS landlord_email,
       u.phone_number AS landlord_phone
FROM housing.properties p
JOIN housing.addresses a ON a.id = p.addr_id
LEFT JOIN app_auth.users u ON u.id = p.landlord_id
WHERE p.id = ?`

func ListingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyIDParam(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	var row detailRow
	res := db.DB.WithContext(ctx).Raw(detailSQL, id).Scan(&row)
	if res.Error != nil {
		log.Printf("[listings] load listing %d: %v", id, res.Error)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load listing")
		return
	}
	if res.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, "Listing not found")
		return
	}

	history, err := loadHistory(db.DB.WithContext(ctx), id)
	if err != nil {
		log.Printf("[listings] load price history %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load listing")
		return
	}

	utils.WriteJSON(w, http.StatusOK, Detail{
		ID:            row.ID,
		Title:         Title(row.UnitLabel, row.Bedrooms, row.Bathrooms),
		UnitLabel:     row.UnitLabel,
		Rent:          row.RentCost,
		Beds:          row.Bedrooms,
		Baths:         row.Bathrooms,
		Sqft:          row.Sqft,
		CanRent:       row.CanRent,
		AddressLine1:  row.Street,
		City:          row.City,
		State:         row.StateCode,
		Zip:           row.ZipCode,
		AvgRating:     row.AvgRating,
		ReviewCount:   row.ReviewCount,
		LandlordName:  row.LandlordName,
		LandlordEmail: row.LandlordEmail,
		LandlordPhone: row.LandlordPhone,
		PriceTrend:    ClassifyTrend(history),
	})
}

func loadHistory(tx *gorm.DB, propertyID uint) ([]PriceHistory, error) {
	var history []PriceHistory
	err := tx.Where("property_id = ?", propertyID).Order("price_start DESC").Find(&history).Error
	return history, err
}

type TrendResponse struct {
	PropertyID uint           `json:"propertyId"`
	Trend      Trend          `json:"trend"`
	History    []PriceHistory `json:"history"`
}

func TrendHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyIDParam(w, r)
	if !ok {
		return
	}
	tx := db.DB.WithContext(r.Context())

	if found, err := propertyExists(tx, id); err != nil {
		log.Printf("[listings] trend lookup %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load price trend")
		return
	} else if !found {
		utils.WriteError(w, http.StatusNotFound, "Listing not found")
		return
	}

	history, err := loadHistory(tx, id)
	if err != nil {
		log.Printf("[listings] load price history %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load price trend")
		return
	}

	utils.WriteJSON(w, http.StatusOK, TrendResponse{
		PropertyID: id,
		Trend:      ClassifyTrend(history),
		History:    history,
	})
}

func ReviewsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := propertyIDParam(w, r)
	if !ok {
		return
	}

	reviews := []ReviewView{}
	if err := reviewsQuery(db.DB.WithContext(r.Context()), id).Scan(&reviews).Error; err != nil {
		log.Printf("[listings] load reviews %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load reviews")
		return
	}
	utils.WriteJSON(w, http.StatusOK, reviews)
}

type reviewRequest struct {
	Stars    json.RawMessage `json:"stars"`
	Comments string          `json:"comments"`
}

// ReviewHandler creates or replaces the caller's review of a listing.
func ReviewHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, ok := propertyIDParam(w, r)
	if !ok {
		return
	}

	var req reviewRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	stars, err := ParseStars(req.Stars)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := db.DB.WithContext(r.Context())
	if found, err := propertyExists(tx, id); err != nil {
		log.Printf("[listings] review lookup %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save review")
		return
	} else if !found {
		utils.WriteError(w, http.StatusNotFound, "Listing not found")
		return
	}

	review := Review{UserID: userID, PropertyID: id, Stars: stars}
	if c := strings.TrimSpace(req.Comments); c != "" {
		review.Comments = &c
	}
	if err := upsertReview(tx, &review).Error; err != nil {
		log.Printf("[listings] upsert review user=%d property=%d: %v", userID, id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to save review")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]string{"message": "Review saved successfully"})
}

func propertyExists(tx *gorm.DB, id uint) (bool, error) {
	var p Property
	err := tx.Select("id").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return err == nil, err
}

// propertyIDParam parses {id}, writing a 400 when it is not a positive integer.
func propertyIDParam(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		utils.WriteError(w, http.StatusBadRequest, "Invalid listing id")
		return 0, false
	}
	return uint(id), true
}
