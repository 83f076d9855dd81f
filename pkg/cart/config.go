package cart

import (
	"fmt"
	"time"

	"github.com/bft-labs/cartkeeper/internal/app"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Config holds the configuration for a Cart.
type Config struct {
	// Backend selects the storage: "file", "redis" or "memory".
	// Ignored when WithKVStore is used.
	Backend string

	// DataDir is the directory for the file backend.
	DataDir string

	// RedisURL is a redis:// URL or host:port for the redis backend.
	RedisURL string

	// Key is the storage key of the snapshot. Default: "cart:products"
	Key string

	// WriteAttempts is the number of tries per snapshot write, at least 2.
	// Default: 3
	WriteAttempts int

	// RetryInitial is the wait before the first retry. Default: 50ms
	RetryInitial time.Duration

	// RetryMax caps the wait between retries. Default: 2s
	RetryMax time.Duration
}

// DefaultConfig returns a Config for the file backend rooted at dataDir.
func DefaultConfig(dataDir string) Config {
	cfg := Config{Backend: BackendFile, DataDir: dataDir}
	cfg.SetDefaults()
	return cfg
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.Key == "" {
		c.Key = app.DefaultKey
	}
	defaults := app.DefaultRetryPolicy()
	if c.WriteAttempts == 0 {
		c.WriteAttempts = defaults.Attempts
	}
	if c.RetryInitial == 0 {
		c.RetryInitial = defaults.Initial
	}
	if c.RetryMax == 0 {
		c.RetryMax = defaults.Max
	}
}

// Validate checks the configuration. The backend settings are only checked
// when requireBackend is true, i.e. when no store was injected.
func (c *Config) Validate(requireBackend bool) error {
	if c.WriteAttempts < 2 {
		return fmt.Errorf("%w: write attempts must be at least 2, got %d", ErrInvalidConfig, c.WriteAttempts)
	}
	if c.RetryInitial < 0 || c.RetryMax < 0 {
		return fmt.Errorf("%w: retry durations cannot be negative", ErrInvalidConfig)
	}
	if !requireBackend {
		return nil
	}

	switch c.Backend {
	case BackendFile:
		if c.DataDir == "" {
			return fmt.Errorf("%w: data dir is required for the file backend", ErrInvalidConfig)
		}
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("%w: redis url is required for the redis backend", ErrInvalidConfig)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("%w: unknown backend %q", ErrInvalidConfig, c.Backend)
	}
	return nil
}

func (c Config) retryPolicy() app.RetryPolicy {
	return app.RetryPolicy{
		Attempts: c.WriteAttempts,
		Initial:  c.RetryInitial,
		Max:      c.RetryMax,
	}
}
