package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/flagx"
)

// parseFlags overlays the short command-line flags:
//
//	-a string   gRPC bind address (e.g. ":50051")
//	-r string   database driver: sqlite or pgx
//	-d string   database DSN (file path for sqlite)
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-i string   TOTP issuer written into provisioning URIs
//	-l string   log level
//	-u string   S3 user
//	-p string   S3 password
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-n int      backup interval, minutes (0 disables)
//
// Other arguments are filtered out first so flags owned elsewhere (-c) do
// not trip the parser.
func parseFlags(config *Config, osArgs []string) {
	args := flagx.FilterArgs(osArgs, []string{"-a", "-r", "-d", "-s", "-t", "-i", "-l", "-u", "-p", "-b", "-g", "-e", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDriver, "r", config.DatabaseDriver, "database driver (sqlite, pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")

	fs.StringVar(&config.TOTPIssuer, "i", config.TOTPIssuer, "TOTP issuer")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	backupInterval := fs.Int("n", int(config.BackupInterval.Minutes()), "backup interval (in minutes, 0 disables)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minute flags only override when given, so sub-minute values from
	// JSON or env survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "n":
			config.BackupInterval = time.Duration(*backupInterval) * time.Minute
		}
	})
}
