// Package configs loads the engine's YAML configuration, the same
// LoadConfig(path)-plus-translator shape as the teacher's
// configs/config.go, with required values (treasury address, fee rates)
// read from the environment through MustGetenv, which panics when one is
// unset the way the teacher's cmd/main.go reads ENC_PK. Adapter API keys
// are optional environment variables.
package configs

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zappilot/dustzap/internal/fee"
)

// Config represents the entire configuration structure from config.yml.
type Config struct {
	Port     int          `yaml:"port"`
	Fee      FeeYAML      `yaml:"fee"`
	SSE      SSEYAML      `yaml:"sse"`
	Adapters AdaptersYAML `yaml:"adapters"`
	DustZap  DustZapYAML  `yaml:"dustZap"`
}

type FeeYAML struct {
	PlatformFeeRate float64 `yaml:"platformFeeRate"`
	ReferrerShare   float64 `yaml:"referrerShare"`
}

type SSEYAML struct {
	HeartbeatIntervalMs int `yaml:"heartbeatIntervalMs"`
	ConnectionTimeoutMs int `yaml:"connectionTimeoutMs"`
	CleanupIntervalMs   int `yaml:"cleanupIntervalMs"`
	MaxConnections      int `yaml:"maxConnections"`
}

type AdaptersYAML struct {
	OneInchBaseURL  string `yaml:"oneInchBaseUrl"`
	ParaswapBaseURL string `yaml:"paraswapBaseUrl"`
	ZeroXBaseURL    string `yaml:"zeroXBaseUrl"`
}

type DustZapYAML struct {
	DustThresholdUSD float64 `yaml:"dustThresholdUsd"`
}

// LoadConfig reads and parses config.yml into a Config struct.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	return &config, nil
}

// ToFeeConfig builds the fee split configuration from YAML plus the
// treasury address, which is intentionally sourced from the environment
// rather than committed to config.yml (spec.md §6's TREASURY_ADDRESS).
func (c *Config) ToFeeConfig(treasuryAddress string) fee.Config {
	return fee.Config{
		PlatformFeeRate: c.Fee.PlatformFeeRate,
		ReferrerShare:   c.Fee.ReferrerShare,
		TreasuryAddress: treasuryAddress,
	}
}

func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.SSE.HeartbeatIntervalMs) * time.Millisecond
}

func (c *Config) ConnectionTimeout() time.Duration {
	return time.Duration(c.SSE.ConnectionTimeoutMs) * time.Millisecond
}

func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.SSE.CleanupIntervalMs) * time.Millisecond
}

// MustGetenv reads a required environment variable, panicking with a
// clear message when it is unset — the same fail-fast pattern the
// teacher's cmd/main.go uses for its private-key env var.
func MustGetenv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("%s not set", key))
	}
	return v
}
