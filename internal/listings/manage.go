package listings

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"gorm.io/gorm"
)

type propertyInput struct {
	Street    *string `json:"street"`
	City      *string `json:"city"`
	StateCode *string `json:"stateCode"`
	ZipCode   *string `json:"zipCode"`
	UnitLabel *string `json:"unitLabel"`
	RentCost  Number  `json:"rentCost"`
	Sqft      Number  `json:"sqft"`
	Bedrooms  Number  `json:"bedrooms"`
	Bathrooms Number  `json:"bathrooms"`
	CanRent   *bool   `json:"canRent"`
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// missingCreateFields lists the required fields absent from a create request.
func (in propertyInput) missingCreateFields() []string {
	var missing []string
	if trimmed(in.Street) == "" {
		missing = append(missing, "street")
	}
	if trimmed(in.City) == "" {
		missing = append(missing, "city")
	}
	if trimmed(in.StateCode) == "" {
		missing = append(missing, "stateCode")
	}
	if trimmed(in.ZipCode) == "" {
		missing = append(missing, "zipCode")
	}
	if !in.RentCost.Valid {
		missing = append(missing, "rentCost")
	}
	return missing
}

var propertyNumberFields = []string{"rentCost", "sqft", "bedrooms", "bathrooms"}

// validateNumbers rejects negative values, and fractions on the whole-number
// columns.
func (in propertyInput) validateNumbers() error {
	for _, n := range []struct {
		name  string
		val   Number
		whole bool
	}{
		{"rentCost", in.RentCost, true},
		{"sqft", in.Sqft, true},
		{"bedrooms", in.Bedrooms, true},
		{"bathrooms", in.Bathrooms, false},
	} {
		if !n.val.Valid {
			continue
		}
		if n.val.Value < 0 {
			return errors.New(n.name + " must be non-negative")
		}
		if n.whole && !n.val.Whole() {
			return errors.New(n.name + " must be a whole number")
		}
	}
	return nil
}

// findOrCreateAddress returns the id of the matching address row, inserting it
// when new.
func findOrCreateAddress(tx *gorm.DB, addr Address) (uint, error) {
	addr.StateCode = strings.ToUpper(addr.StateCode)
	err := tx.Where(Address{
		Street:    addr.Street,
		City:      addr.City,
		StateCode: addr.StateCode,
		ZipCode:   addr.ZipCode,
	}).FirstOrCreate(&addr).Error
	return addr.ID, err
}

func MyPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var rows []listingRow
	err := searchQuery(db.DB.WithContext(r.Context()), Filter{}).
		Where("p.landlord_id = ?", userID).
		Find(&rows).Error
	if err != nil {
		log.Printf("[listings] my properties %d: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load properties")
		return
	}

	out := make([]Summary, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummary(row))
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var in propertyInput
	if err := decodeWithNumbers(w, r, &in, false, propertyNumberFields...); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if missing := in.missingCreateFields(); len(missing) > 0 {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}
	if err := in.validateNumbers(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	prop := Property{
		LandlordID: &userID,
		UnitLabel:  trimmed(in.UnitLabel),
		RentCost:   in.RentCost.IntPtr(),
		Sqft:       in.Sqft.IntPtr(),
		Bedrooms:   in.Bedrooms.IntPtr(),
		Bathrooms:  in.Bathrooms.Ptr(),
		CanRent:    in.CanRent == nil || *in.CanRent,
	}

	// Address, property and opening price commit together
	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		addrID, err := findOrCreateAddress(tx, Address{
			Street:    trimmed(in.Street),
			City:      trimmed(in.City),
			StateCode: trimmed(in.StateCode),
			ZipCode:   trimmed(in.ZipCode),
		})
		if err != nil {
			return err
		}
		prop.AddrID = addrID

		if err := tx.Create(&prop).Error; err != nil {
			return err
		}
		return tx.Create(&PriceHistory{
			PropertyID: prop.ID,
			Price:      *prop.RentCost,
			PriceStart: time.Now().UTC(),
		}).Error
	})
	if err != nil {
		log.Printf("[listings] create property for landlord %d: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":    "Property created",
		"propertyId": prop.ID,
	})
}

// loadOwned fetches a property owned by the caller, writing 404 when it does
// not exist or belongs to someone else.
func loadOwned(w http.ResponseWriter, r *http.Request, tx *gorm.DB) (Property, bool) {
	var prop Property
	userID, _ := utils.GetUserIDFromContext(r.Context())
	id, ok := propertyIDParam(w, r)
	if !ok {
		return prop, false
	}

	err := tx.Where("id = ? AND landlord_id = ?", id, userID).First(&prop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Property not found")
		return prop, false
	}
	if err != nil {
		log.Printf("[listings] load property %d: %v", id, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load property")
		return prop, false
	}
	return prop, true
}

func UpdatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	tx := db.DB.WithContext(r.Context())
	prop, ok := loadOwned(w, r, tx)
	if !ok {
		return
	}

	var in propertyInput
	if err := decodeWithNumbers(w, r, &in, false, propertyNumberFields...); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.validateNumbers(); err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	updates := map[string]any{}
	if in.UnitLabel != nil {
		updates["unit_label"] = trimmed(in.UnitLabel)
	}
	if in.Sqft.Valid {
		updates["sqft"] = *in.Sqft.IntPtr()
	}
	if in.Bedrooms.Valid {
		updates["bedrooms"] = *in.Bedrooms.IntPtr()
	}
	if in.Bathrooms.Valid {
		updates["bathrooms"] = in.Bathrooms.Value
	}
	if in.CanRent != nil {
		updates["can_rent"] = *in.CanRent
	}

	var newRent *int
	if in.RentCost.Valid {
		newRent = in.RentCost.IntPtr()
		updates["rent_cost"] = *newRent
	}
	rentChanged := newRent != nil && (prop.RentCost == nil || *prop.RentCost != *newRent)

	addressChanged := in.Street != nil || in.City != nil || in.StateCode != nil || in.ZipCode != nil

	err := tx.Transaction(func(tx *gorm.DB) error {
		if addressChanged {
			var addr Address
			if err := tx.First(&addr, prop.AddrID).Error; err != nil {
				return err
			}
			merge := func(dst *string, src *string) {
				if v := trimmed(src); v != "" {
					*dst = v
				}
			}
			merge(&addr.Street, in.Street)
			merge(&addr.City, in.City)
			merge(&addr.StateCode, in.StateCode)
			merge(&addr.ZipCode, in.ZipCode)
			addr.ID = 0

			addrID, err := findOrCreateAddress(tx, addr)
			if err != nil {
				return err
			}
			updates["addr_id"] = addrID
		}

		if len(updates) > 0 {
			if err := tx.Model(&prop).Updates(updates).Error; err != nil {
				return err
			}
		}
		if rentChanged {
			return tx.Create(&PriceHistory{
				PropertyID: prop.ID,
				Price:      *newRent,
				PriceStart: time.Now().UTC(),
			}).Error
		}
		return nil
	})
	if err != nil {
		log.Printf("[listings] update property %d: %v", prop.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update property")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message":    "Property updated",
		"propertyId": prop.ID,
	})
}

func DeletePropertyHandler(w http.ResponseWriter, r *http.Request) {
	tx := db.DB.WithContext(r.Context())
	prop, ok := loadOwned(w, r, tx)
	if !ok {
		return
	}

	err := tx.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", prop.ID).Delete(&Review{}).Error; err != nil {
			return err
		}
		if err := tx.Where("property_id = ?", prop.ID).Delete(&PriceHistory{}).Error; err != nil {
			return err
		}
		return tx.Delete(&prop).Error
	})
	if err != nil {
		log.Printf("[listings] delete property %d: %v", prop.ID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to delete property")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Property deleted"})
}
