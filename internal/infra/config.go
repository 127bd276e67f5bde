package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every setting of the client core. Loaded from yaml, then
// sensitive or deployment-specific values are overridden from environment
// variables.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Backend struct {
		BaseURL    string `yaml:"base_url"`
		TimeoutSec int    `yaml:"timeout_sec"`
	} `yaml:"backend"`

	Wallet struct {
		// BridgeURL points at a real wallet provider bridge (ws:// or
		// wss://). Empty means no provider is available and the demo
		// fallback is the only identity path.
		BridgeURL string `yaml:"bridge_url"`
	} `yaml:"wallet"`

	Gateway struct {
		ProcessingDelayMS int `yaml:"processing_delay_ms"`
	} `yaml:"gateway"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, applies environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		return fmt.Errorf("invalid backend base URL: %s", c.Backend.BaseURL)
	}

	if c.Wallet.BridgeURL != "" &&
		!strings.HasPrefix(c.Wallet.BridgeURL, "ws://") && !strings.HasPrefix(c.Wallet.BridgeURL, "wss://") {
		return fmt.Errorf("invalid wallet bridge URL: %s", c.Wallet.BridgeURL)
	}

	if c.Gateway.ProcessingDelayMS < 0 {
		return fmt.Errorf("processing delay must not be negative")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}

	return nil
}

// ProcessingDelay returns the artificial gateway settlement delay.
func (c *Config) ProcessingDelay() time.Duration {
	return time.Duration(c.Gateway.ProcessingDelayMS) * time.Millisecond
}

// BackendTimeout returns the backend HTTP client timeout.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSec) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.TimeoutSec <= 0 {
		cfg.Backend.TimeoutSec = 10
	}
	if cfg.Gateway.ProcessingDelayMS == 0 {
		cfg.Gateway.ProcessingDelayMS = 2000
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "localhost:8090"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// overrideWithEnv applies environment variables on top of file values.
// Environment takes precedence over the config file.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("PROPCHAIN_BACKEND_URL"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if url := os.Getenv("PROPCHAIN_BRIDGE_URL"); url != "" {
		cfg.Wallet.BridgeURL = url
	}
	if addr := os.Getenv("PROPCHAIN_SERVER_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if level := os.Getenv("PROPCHAIN_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
