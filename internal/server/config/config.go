// Package config handles configuration for the steward server: defaults,
// an optional JSON file, STEWARD_* environment variables, and short
// command-line flags, applied in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/otpsteward/internal/dbx"
)

// EnvConfigPath names the environment variable consulted for the JSON
// config path when -c/-config is absent.
const EnvConfigPath = "STEWARD_CONFIG"

// Config holds runtime settings for the steward server.
//
// TOTP fields shape newly provisioned credentials only; stored credentials
// keep the parameters they were created with.
type Config struct {
	EndpointAddrGRPC            string        `env:"GRPC_ADDR"`
	DatabaseDriver              string        `env:"DB_DRIVER"`
	DatabaseDSN                 string        `env:"DB_DSN"`
	SecretKey                   string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration time.Duration `env:"ACCESS_TOKEN_TTL"`
	TOTPIssuer                  string        `env:"TOTP_ISSUER"`
	TOTPPeriod                  uint          `env:"TOTP_PERIOD"`
	TOTPDigits                  int           `env:"TOTP_DIGITS"`
	SecretSize                  uint          `env:"SECRET_SIZE"`
	QRWidth                     uint8         `env:"QR_WIDTH"`
	LogLevel                    string        `env:"LOG_LEVEL"`
	LogFormat                   string        `env:"LOG_FORMAT"`
	S3RootUser                  string        `env:"S3_USER"`
	S3RootPassword              string        `env:"S3_PASSWORD"`
	S3Bucket                    string        `env:"S3_BUCKET"`
	S3Region                    string        `env:"S3_REGION"`
	S3BaseEndpoint              string        `env:"S3_ENDPOINT"`
	BackupInterval              time.Duration `env:"BACKUP_INTERVAL"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = dbx.DriverSQLite
	c.DatabaseDSN = "steward.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.TOTPIssuer = "steward"
	c.TOTPPeriod = 30
	c.TOTPDigits = 6
	c.SecretSize = 20
	c.QRWidth = 8
	c.LogLevel = "info"
	c.LogFormat = "json"
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "steward-backups"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.BackupInterval = 0
}

// LoadConfig builds a Config from defaults, then the JSON file, then the
// environment, then command-line flags. Malformed input panics, as there is
// nothing sensible to run with.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	if err := parseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg, os.Args[1:])
	return cfg
}

// Validate reports settings that would make the server misbehave.
func (c *Config) Validate() error {
	var errs []error
	if c.EndpointAddrGRPC == "" {
		errs = append(errs, errors.New("grpc address is empty"))
	}
	if c.DatabaseDriver != dbx.DriverSQLite && c.DatabaseDriver != dbx.DriverPostgres {
		errs = append(errs, fmt.Errorf("database driver %q is not one of %q, %q", c.DatabaseDriver, dbx.DriverSQLite, dbx.DriverPostgres))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("database dsn is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.TOTPPeriod == 0 {
		errs = append(errs, errors.New("totp period must be positive"))
	}
	if c.TOTPDigits < 6 || c.TOTPDigits > 8 {
		errs = append(errs, fmt.Errorf("totp digits %d out of range 6..8", c.TOTPDigits))
	}
	if c.SecretSize < 10 {
		errs = append(errs, fmt.Errorf("secret size %d is below 10 bytes", c.SecretSize))
	}
	if c.BackupInterval < 0 {
		errs = append(errs, errors.New("backup interval is negative"))
	}
	return errors.Join(errs...)
}
