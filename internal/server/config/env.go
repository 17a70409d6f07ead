package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config fields from environment variables. Unset or
// malformed values leave the current value in place.
//
// Recognized variables:
//
//	PORT                 bind port ("3000" becomes ":3000")
//	DATABASE_PATH        SQLite database path
//	UPLOAD_DIR           upload staging/retention directory
//	UPLOAD_TOKEN         shared upload token
//	ADMIN_USERNAME       dashboard account name
//	ADMIN_PASSWORD_HASH  bcrypt hash of the dashboard password
//	SESSION_SECRET       cookie signing secret
//	SESSION_TTL          session lifetime, Go duration syntax ("24h")
//	COOKIE_SECURE        "true"/"1" to mark the session cookie Secure
func parseEnv(config *Config) {
	if v := os.Getenv("PORT"); v != "" {
		config.Addr = ":" + v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		config.UploadDir = v
	}
	if v := os.Getenv("UPLOAD_TOKEN"); v != "" {
		config.UploadToken = v
	}
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		config.AdminUsername = v
	}
	if v := os.Getenv("ADMIN_PASSWORD_HASH"); v != "" {
		config.AdminPasswordHash = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("SESSION_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			config.SessionTTL = d
		}
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			config.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("COOKIE_SECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.CookieSecure = b
		}
	}
}
