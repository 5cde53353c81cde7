package config

import (
	"fmt"
	"strings"
)

// APIConfig holds the HTTP API listener settings.
type APIConfig struct {
	Addr string `json:"addr"`
	// ShutdownSeconds bounds the graceful shutdown on exit.
	ShutdownSeconds int `json:"shutdown_seconds"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8000"
	}
	if c.ShutdownSeconds <= 0 {
		c.ShutdownSeconds = 5
	}
}

// Validate checks the listen address shape.
func (c APIConfig) Validate() error {
	if !strings.Contains(c.Addr, ":") {
		return fmt.Errorf("api: invalid listen address %q", c.Addr)
	}
	return nil
}
