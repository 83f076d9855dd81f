package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/bft-labs/cartkeeper/pkg/cart"
)

// DefaultListenAddr is the default address of the HTTP API.
const DefaultListenAddr = "127.0.0.1:8080"

// Config holds CLI configuration for cartkeeper.
type Config struct {
	Backend  string
	DataDir  string
	RedisURL string
	Key      string

	ListenAddr string
	LogLevel   string

	WriteRetries int
	RetryInitial time.Duration
	RetryMax     time.Duration

	Watch bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Backend:      cart.BackendFile,
		DataDir:      defaultDataDir(),
		Key:          cart.DefaultKey,
		ListenAddr:   DefaultListenAddr,
		LogLevel:     "info",
		WriteRetries: 3,
		RetryInitial: 50 * time.Millisecond,
		RetryMax:     2 * time.Second,
	}
}

func defaultDataDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".cartkeeper", "data")
	}
	return ""
}

// Validate checks the configuration for errors and normalizes values.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case cart.BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("data-dir is required for the file backend")
		}
	case cart.BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis-url is required for the redis backend")
		}
	case cart.BackendMemory:
	default:
		return fmt.Errorf("unknown backend %q (want file, redis or memory)", c.Backend)
	}

	if c.Key == "" {
		c.Key = cart.DefaultKey
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.WriteRetries < 2 {
		return fmt.Errorf("write retries must be at least 2")
	}
	if c.RetryInitial <= 0 {
		return fmt.Errorf("retry initial must be positive")
	}
	if c.RetryMax < c.RetryInitial {
		return fmt.Errorf("retry max must not be below retry initial")
	}

	return nil
}

// CartConfig converts the CLI configuration to a cart.Config.
func (c Config) CartConfig() cart.Config {
	return cart.Config{
		Backend:       c.Backend,
		DataDir:       c.DataDir,
		RedisURL:      c.RedisURL,
		Key:           c.Key,
		WriteAttempts: c.WriteRetries,
		RetryInitial:  c.RetryInitial,
		RetryMax:      c.RetryMax,
	}
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

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
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

// setIntFromString parses a string to int and sets the destination if valid.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
