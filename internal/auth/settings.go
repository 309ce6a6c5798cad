package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"gorm.io/gorm"
)

type settingsUser struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	DisplayName string `json:"displayName"`
}

type SettingsResponse struct {
	Role           utils.Role   `json:"role"`
	User           settingsUser `json:"user"`
	RenterSettings *Renter      `json:"renterSettings,omitempty"`
}

func GetSettingsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	resp := SettingsResponse{
		Role: role,
		User: settingsUser{
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			DisplayName: user.DisplayName,
		},
	}

	if role == utils.RoleRenter {
		var renter Renter
		if err := db.DB.WithContext(r.Context()).First(&renter, "user_id = ?", user.UserID).Error; err != nil {
			log.Printf("[auth] load renter settings %d: %v", user.UserID, err)
			utils.WriteError(w, http.StatusInternalServerError, "Failed to load settings")
			return
		}
		resp.RenterSettings = &renter
	}

	utils.WriteJSON(w, http.StatusOK, resp)
}

type updateSettingsRequest struct {
	Email           *string `json:"email"`
	PhoneNumber     *string `json:"phoneNumber"`
	DisplayName     *string `json:"displayName"`
	DistanceMax     *int    `json:"distanceMax"`
	GenderPreferred *string `json:"genderPreferred"`
}

func UpdateSettingsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	var req updateSettingsRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	userUpdates := map[string]any{}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if email == "" {
			utils.WriteError(w, http.StatusBadRequest, "email cannot be empty")
			return
		}
		userUpdates["email"] = email
	}
	if req.PhoneNumber != nil {
		userUpdates["phone_number"] = strings.TrimSpace(*req.PhoneNumber)
	}
	if req.DisplayName != nil {
		userUpdates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}

	renterUpdates := map[string]any{}
	if role == utils.RoleRenter {
		if req.DistanceMax != nil {
			if *req.DistanceMax < 0 {
				utils.WriteError(w, http.StatusBadRequest, "distanceMax must be non-negative")
				return
			}
			renterUpdates["distance_max"] = *req.DistanceMax
		}
		if req.GenderPreferred != nil {
			renterUpdates["gender_preferred"] = strings.TrimSpace(*req.GenderPreferred)
		}
	}

	err := db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			res := tx.Model(&User{}).Where("id = ?", userID).Updates(userUpdates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		if len(renterUpdates) > 0 {
			if err := tx.Model(&Renter{}).Where("user_id = ?", userID).Updates(renterUpdates).Error; err != nil {
				return err
			}
		}
		return nil
	})
	switch {
	case db.IsUniqueViolation(err):
		utils.WriteError(w, http.StatusConflict, "Email already in use")
		return
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		log.Printf("[auth] update settings %d: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to update settings")
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Settings saved"})
}
