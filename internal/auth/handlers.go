package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/MainePadFinder/padfinder/internal/db"
	"github.com/MainePadFinder/padfinder/internal/middleware"
	"github.com/MainePadFinder/padfinder/internal/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Cookie and session policy; overridden by Init from config.
var (
	sessionTTL     = 24 * time.Hour
	cookieSecure   = false
	cookieSameSite = http.SameSiteLaxMode
)

type signupRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	BirthDate   string `json:"birthDate"`
	DisplayName string `json:"displayName"`
	Gender      string `json:"gender"`
	UserType    string `json:"userType"`
}

func SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var missing []string
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	role := utils.Role(req.UserType)
	if role != utils.RoleRenter && role != utils.RoleLandlord {
		utils.WriteError(w, http.StatusBadRequest, "userType must be Renter or Landlord")
		return
	}

	var birthDate *time.Time
	if req.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, "birthDate must be YYYY-MM-DD")
			return
		}
		birthDate = &bd
	}

	// Check if username or email is taken
	var count int64
	if err := db.DB.WithContext(r.Context()).Model(&User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count).Error; err != nil {
		log.Printf("[auth] signup lookup: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if count > 0 {
		utils.WriteError(w, http.StatusConflict, "Username or email already taken")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "Server error hashing password")
		return
	}

	user := User{
		Username:     req.Username,
		PasswordHash: string(hashed),
		Email:        req.Email,
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Gender:       strings.TrimSpace(req.Gender),
		BirthDate:    birthDate,
		DisplayName:  strings.TrimSpace(req.DisplayName),
	}

	// User row and role row commit together or not at all
	err = db.DB.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		if role == utils.RoleLandlord {
			return tx.Create(&Landlord{UserID: user.UserID}).Error
		}
		return tx.Create(&Renter{UserID: user.UserID, GenderPreferred: "?"}).Error
	})
	if db.IsUniqueViolation(err) {
		utils.WriteError(w, http.StatusConflict, "Username or email already taken")
		return
	}
	if err != nil {
		log.Printf("[auth] signup insert: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"message":  "User created successfully",
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid request format")
		return
	}
	if req.Username == "" || req.Password == "" {
		utils.WriteError(w, http.StatusBadRequest, "Missing required fields: username, password")
		return
	}

	var user User
	err := db.DB.WithContext(r.Context()).First(&user, "username = ?", req.Username).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("[auth] login lookup: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		utils.WriteError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := NewSessionToken()
	if err != nil {
		log.Printf("[auth] token generation: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	now := time.Now().UTC()
	session := Session{
		Token:     token,
		UserID:    user.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(sessionTTL),
	}
	if err := db.DB.WithContext(r.Context()).Create(&session).Error; err != nil {
		log.Printf("[auth] create session: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
	})

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message":  "Login successful",
		"user_id":  user.UserID,
		"username": user.Username,
	})
}

func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	// SessionMiddleware already validated the cookie
	cookie, err := r.Cookie(middleware.SessionCookieName)
	if err == nil {
		if err := db.DB.WithContext(r.Context()).Where("token = ?", cookie.Value).Delete(&Session{}).Error; err != nil {
			log.Printf("[auth] delete session: %v", err)
			utils.WriteError(w, http.StatusInternalServerError, "Logout failed")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: cookieSameSite,
		Secure:   cookieSecure,
	})

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

type MeResponse struct {
	UserID   uint       `json:"user_id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     utils.Role `json:"role"`
}

func MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	utils.WriteJSON(w, http.StatusOK, MeResponse{
		UserID:   user.UserID,
		Username: user.Username,
		Email:    user.Email,
		Role:     role,
	})
}

type ProfileResponse struct {
	Email       string     `json:"email"`
	PhoneNumber string     `json:"phoneNumber"`
	Gender      string     `json:"gender"`
	Description string     `json:"description"`
	PictureURL  string     `json:"pictureUrl"`
	DisplayName string     `json:"displayName"`
	Role        utils.Role `json:"role"`
	IsLandlord  bool       `json:"isLandlord"`
}

func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	role, _ := utils.GetRoleFromContext(r.Context())

	utils.WriteJSON(w, http.StatusOK, ProfileResponse{
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Gender:      user.Gender,
		Description: user.UserDesc,
		PictureURL:  user.PictureURL,
		DisplayName: user.DisplayName,
		Role:        role,
		IsLandlord:  role == utils.RoleLandlord,
	})
}

// currentUser loads the authenticated user, writing 404/500 on failure.
func currentUser(w http.ResponseWriter, r *http.Request) (User, bool) {
	var user User

	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Unauthorized")
		return user, false
	}

	err := db.DB.WithContext(r.Context()).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.WriteError(w, http.StatusNotFound, "User not found")
		return user, false
	}
	if err != nil {
		log.Printf("[auth] load user %d: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "Failed to load user")
		return user, false
	}
	return user, true
}
