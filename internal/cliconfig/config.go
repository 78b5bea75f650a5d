package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/livemount/internal/app"
)

// Config holds CLI configuration for livemount.
type Config struct {
	// NodeIP is the address of any node of the cluster, optionally with scheme.
	NodeIP string

	Username string
	Password string
	APIToken string

	HTTPTimeout time.Duration
	Insecure    bool

	Format     string
	OutputFile string
	LogLevel   string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		HTTPTimeout: 60 * time.Second,
		Format:      app.FormatJSON,
		LogLevel:    "info",
	}
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	c.NodeIP = strings.TrimRight(strings.TrimSpace(c.NodeIP), "/")
	if c.NodeIP == "" {
		return fmt.Errorf("node-ip is required")
	}

	if c.APIToken == "" && (c.Username == "" || c.Password == "") {
		return fmt.Errorf("api-token or username and password are required")
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = app.FormatJSON
	}
	if c.Format != app.FormatJSON && c.Format != app.FormatYAML {
		return fmt.Errorf("format must be %s or %s, got %q", app.FormatJSON, app.FormatYAML, c.Format)
	}

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}

	return nil
}

// BaseURL returns the cluster API root. Bare addresses default to https.
func (c Config) BaseURL() string {
	addr := strings.TrimRight(strings.TrimSpace(c.NodeIP), "/")
	if addr == "" {
		return ""
	}
	if strings.HasPrefix(addr, "http://") || strings.HasPrefix(addr, "https://") {
		return addr
	}
	return "https://" + addr
}

// Masked returns a copy safe for logging.
func (c Config) Masked() Config {
	if c.Password != "" {
		c.Password = "*****"
	}
	if c.APIToken != "" {
		c.APIToken = "*****"
	}
	return c
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
