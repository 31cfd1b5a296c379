package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/otpsteward/internal/flagx"
	"github.com/dmitrijs2005/otpsteward/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	AccessToken        string         `json:"access_token"`
}

// parseJson overlays cfg with the non-empty values of the JSON file named
// by -c/-config or STEWARD_CLIENT_CONFIG.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args, EnvConfigPath)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.AccessToken != "" {
		cfg.AccessToken = jc.AccessToken
	}
	return nil
}
