package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfigPath names the environment variable consulted for the JSON
// config path when -c/-config is absent.
const EnvConfigPath = "STEWARD_CLIENT_CONFIG"

// GlobalFlags take a value and may precede the command name.
var GlobalFlags = []string{"-a", "-t", "-w", "-c", "-config"}

// Config holds runtime settings for the steward client.
type Config struct {
	ServerEndpointAddr string        `env:"ADDR"`
	RequestTimeout     time.Duration `env:"TIMEOUT"`
	AccessToken        string        `env:"TOKEN"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config from defaults, the JSON file, the
// environment and then args. Later sources take precedence.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: "STEWARD_CLIENT_"}); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
