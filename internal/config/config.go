package config

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	DatabaseURL    string
	TLSCertPath    string
	TLSKeyPath     string
	FrontendOrigin string
	SessionTTL     time.Duration
	CookieSecure   bool
	CookieSameSite http.SameSite

	DBLogLevel        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
}

func Load() Config {
	return Config{
		Port:           getenv("PORT", "5050"),
		DatabaseURL:    databaseURL(),
		TLSCertPath:    os.Getenv("SSL_CERT_PATH"),
		TLSKeyPath:     os.Getenv("SSL_KEY_PATH"),
		FrontendOrigin: strings.TrimRight(getenv("FRONTEND_ORIGIN", "http://localhost:5173"), "/"),
		SessionTTL:     getenvDuration("SESSION_TTL", 24*time.Hour),
		CookieSecure:   os.Getenv("COOKIE_SECURE") == "true",
		CookieSameSite: sameSite(os.Getenv("COOKIE_SAMESITE")),

		DBLogLevel:        strings.ToLower(getenv("DB_LOG_LEVEL", "warn")),
		DBMaxOpenConns:    getenvInt("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdleConns:    getenvInt("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetime: getenvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
	}
}

// TLSEnabled reports whether both certificate and key paths are configured.
func (c Config) TLSEnabled() bool {
	return c.TLSCertPath != "" && c.TLSKeyPath != ""
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// discrete DB_* variables.
func databaseURL() string {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return dsn
	}
	host := os.Getenv("DB_HOST")
	if host == "" {
		return ""
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%s", host, getenv("DB_PORT", "5432")),
		Path:   "/" + os.Getenv("DB_NAME"),
	}
	if user := os.Getenv("DB_USER"); user != "" {
		u.User = url.UserPassword(user, os.Getenv("DB_PASSWORD"))
	}

	q := url.Values{}
	q.Set("sslmode", getenv("DB_SSLMODE", "disable"))
	if root := os.Getenv("DB_SSL_ROOT_CERT"); root != "" {
		q.Set("sslrootcert", root)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func sameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return http.SameSiteNoneMode
	case "strict":
		return http.SameSiteStrictMode
	default:
		return http.SameSiteLaxMode
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil {
			return time.Duration(hours) * time.Hour
		}
	}
	return fallback
}
