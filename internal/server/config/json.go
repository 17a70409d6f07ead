package config

import (
	"encoding/json"
	"os"

	"tgrelay/internal/flagx"
	"tgrelay/internal/timex"
)

// JsonConfig is the intermediate DTO used only for reading JSON config
// files. Duration fields accept both strings like "24h" and integer
// nanoseconds; after unmarshalling the values are copied into the runtime
// Config.
type JsonConfig struct {
	Addr              string         `json:"addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	UploadDir         string         `json:"upload_dir"`
	UploadToken       string         `json:"upload_token"`
	AdminUsername     string         `json:"admin_username"`
	AdminPasswordHash string         `json:"admin_password_hash"`
	SecretKey         string         `json:"secret_key"`
	SessionTTL        timex.Duration `json:"session_ttl"`
	SessionRetention  timex.Duration `json:"session_retention"`
	PruneInterval     timex.Duration `json:"prune_interval"`
	MaxUploadBytes    int64          `json:"max_upload_bytes"`
	CookieSecure      *bool          `json:"cookie_secure"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag. Absent flags mean no file is loaded; an unreadable or
// invalid file panics. Only fields present in the file override the current
// values.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.Addr != "" {
		config.Addr = c.Addr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.UploadDir != "" {
		config.UploadDir = c.UploadDir
	}
	if c.UploadToken != "" {
		config.UploadToken = c.UploadToken
	}
	if c.AdminUsername != "" {
		config.AdminUsername = c.AdminUsername
	}
	if c.AdminPasswordHash != "" {
		config.AdminPasswordHash = c.AdminPasswordHash
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.SessionRetention.Duration > 0 {
		config.SessionRetention = c.SessionRetention.Duration
	}
	if c.PruneInterval.Duration > 0 {
		config.PruneInterval = c.PruneInterval.Duration
	}
	if c.MaxUploadBytes > 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
}
