package db

import (
	"log"
	"os"
	"time"

	"github.com/MainePadFinder/padfinder/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection pool. Every query borrows its own
// connection from the pool, so handlers never share a cursor.
var DB *gorm.DB

// gormLogLevel maps DB_LOG_LEVEL onto gorm's levels. Unknown values log
// warnings, which includes slow queries.
func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func Connect(cfg config.Config) {
	if cfg.DatabaseURL == "" {
		log.Fatal("database DSN is empty (set DATABASE_URL or DB_HOST/DB_USER/DB_NAME)")
	}

	lg := logger.New(
		log.New(os.Stdout, "[db] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(cfg.DBLogLevel),
			IgnoreRecordNotFoundError: true,
		},
	)

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: lg,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB: ", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	DB = db
	log.Printf("[db] connected (log=%s, max open=%d, idle=%d)", cfg.DBLogLevel, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
}
