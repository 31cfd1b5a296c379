package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/otpsteward/internal/flagx"
	"github.com/dmitrijs2005/otpsteward/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "90s" style
// strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrGRPC            string         `json:"endpoint_addr_grpc"`
	DatabaseDriver              string         `json:"database_driver"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	TOTPIssuer                  string         `json:"totp_issuer"`
	TOTPPeriod                  uint           `json:"totp_period"`
	TOTPDigits                  int            `json:"totp_digits"`
	SecretSize                  uint           `json:"secret_size"`
	QRWidth                     uint8          `json:"qr_width"`
	LogLevel                    string         `json:"log_level"`
	LogFormat                   string         `json:"log_format"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	BackupInterval              timex.Duration `json:"backup_interval"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// STEWARD_CONFIG). Keys absent from the file keep their current value.
// Unreadable or malformed files panic.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigPath(args, EnvConfigPath)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	overlay(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	overlay(&config.DatabaseDriver, c.DatabaseDriver)
	overlay(&config.DatabaseDSN, c.DatabaseDSN)
	overlay(&config.SecretKey, c.SecretKey)
	overlay(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	overlay(&config.TOTPIssuer, c.TOTPIssuer)
	overlay(&config.TOTPPeriod, c.TOTPPeriod)
	overlay(&config.TOTPDigits, c.TOTPDigits)
	overlay(&config.SecretSize, c.SecretSize)
	overlay(&config.QRWidth, c.QRWidth)
	overlay(&config.LogLevel, c.LogLevel)
	overlay(&config.LogFormat, c.LogFormat)
	overlay(&config.S3RootUser, c.S3RootUser)
	overlay(&config.S3RootPassword, c.S3RootPassword)
	overlay(&config.S3Bucket, c.S3Bucket)
	overlay(&config.S3Region, c.S3Region)
	overlay(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	overlay(&config.BackupInterval, c.BackupInterval.Duration)
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
