// Package config loads and validates the application configuration
// from a YAML or JSON file with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetgrid/supplyline/core/metrics"
	"github.com/fleetgrid/supplyline/core/telemetry"
	"github.com/fleetgrid/supplyline/infra/logger"
	"github.com/fleetgrid/supplyline/infra/mqtt"
)

type Config struct {
	Seed      SeedConfig       `json:"seed"`
	Telemetry telemetry.Config `json:"telemetry"`
	Metrics   metrics.Config   `json:"metrics"`
	MQTT      mqtt.Config      `json:"mqtt"`
	History   HistoryConfig    `json:"history"`
	API       APIConfig        `json:"api"`
	Logging   logger.Config    `json:"logging"`
}

// Default returns a runnable configuration with the built-in seed.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	c.Seed.SetDefaults()
	c.Metrics.SetDefaults()
	c.MQTT.SetDefaults()
	c.History.SetDefaults()
	c.API.SetDefaults()
	c.Logging.SetDefaults()
}

func (c *Config) validate() error {
	if err := c.Seed.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}
	if err := c.API.Validate(); err != nil {
		return err
	}
	return c.Logging.Validate()
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SL_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sl_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
