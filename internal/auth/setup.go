package auth

import (
	"log"

	"github.com/MainePadFinder/padfinder/internal/config"
	"github.com/MainePadFinder/padfinder/internal/db"
)

func Init(cfg config.Config) {
	if cfg.SessionTTL > 0 {
		sessionTTL = cfg.SessionTTL
	}
	cookieSecure = cfg.CookieSecure
	cookieSameSite = cfg.CookieSameSite

	if err := db.EnsureSchema(db.DB, "app_auth"); err != nil {
		log.Fatal("Failed to ensure schema app_auth: ", err)
	}

	if err := db.DB.AutoMigrate(&User{}, &Session{}, &Landlord{}, &Renter{}); err != nil {
		log.Fatal("Failed to auto-migrate auth tables: ", err)
	}
}
