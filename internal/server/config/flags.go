package config

import (
	"flag"
	"os"
	"time"

	"tgrelay/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":3000")
//	-d string   SQLite database path
//	-u string   upload directory
//	-k string   shared upload token
//	-s string   cookie signing secret
//	-t int      dashboard session lifetime, hours
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes
//     using flagx.FilterArgs, avoiding collisions with other components.
//   - The session lifetime flag is accepted as an integer hour count and
//     then converted to a time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-u", "-k", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database path")
	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "upload directory")
	fs.StringVar(&config.UploadToken, "k", config.UploadToken, "upload token")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTTL := fs.Int("t", int(config.SessionTTL.Hours()), "session lifetime (in hours)")

	_ = fs.Parse(args)

	if *sessionTTL > 0 {
		config.SessionTTL = time.Duration(*sessionTTL) * time.Hour
	}
}
