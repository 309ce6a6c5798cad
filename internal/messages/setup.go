package messages

import (
	"log"

	"github.com/MainePadFinder/padfinder/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "messaging"); err != nil {
		log.Fatal("Failed to ensure schema messaging: ", err)
	}

	if err := db.DB.AutoMigrate(&Message{}); err != nil {
		log.Fatal("Failed to auto-migrate messaging tables: ", err)
	}
}
