// Package config handles configuration for the relay server, including
// defaults, JSON overlay, environment variables, and command-line flags.
package config

import "time"

// Config holds runtime settings for the tgrelay server.
//
// Fields:
//   - Addr: bind address for the HTTP API.
//   - DatabaseDSN: SQLite DSN (a file path, or ":memory:" for tests).
//   - UploadDir: staging and retention directory for uploaded files.
//   - UploadToken: shared token required on the upload endpoint.
//   - AdminUsername / AdminPasswordHash: dashboard account; the password is
//     stored as a bcrypt hash, never in the clear.
//   - SecretKey: HMAC secret for signing session cookies (HS256). Do not use
//     the test default in prod.
//   - SessionTTL: dashboard session lifetime.
//   - SessionRetention: how long expired sessions are kept for audit.
//   - PruneInterval: how often the session sweep runs.
//   - MaxUploadBytes: upload body ceiling.
//   - CookieSecure: mark the session cookie Secure (set behind TLS).
type Config struct {
	Addr              string
	DatabaseDSN       string
	UploadDir         string
	UploadToken       string
	AdminUsername     string
	AdminPasswordHash string
	SecretKey         string
	SessionTTL        time.Duration
	SessionRetention  time.Duration
	PruneInterval     time.Duration
	MaxUploadBytes    int64
	CookieSecure      bool
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.Addr = ":3000"
	c.DatabaseDSN = "tgrelay.db"
	c.UploadDir = "./uploads"
	c.UploadToken = ""
	c.AdminUsername = "admin"
	c.AdminPasswordHash = ""
	c.SecretKey = "secretKey"
	c.SessionTTL = 24 * time.Hour
	c.SessionRetention = 30 * 24 * time.Hour
	c.PruneInterval = time.Hour
	c.MaxUploadBytes = 2 << 30
	c.CookieSecure = false
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment, and finally command-line
// flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
