package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "CARTKEEPER_"

// ApplyEnvConfig applies CARTKEEPER_* environment variables to cfg.
// Values override the config file but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	env := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setString("backend", env("BACKEND"), &cfg.Backend)
	s.setString("data-dir", env("DATA_DIR"), &cfg.DataDir)
	s.setString("redis-url", env("REDIS_URL"), &cfg.RedisURL)
	s.setString("key", env("KEY"), &cfg.Key)
	s.setString("listen", env("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("log-level", env("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setIntFromString("write-retries", env("WRITE_RETRIES"), &cfg.WriteRetries); err != nil {
		return err
	}
	if err := s.setDuration("retry-initial", env("RETRY_INITIAL"), &cfg.RetryInitial); err != nil {
		return err
	}
	if err := s.setDuration("retry-max", env("RETRY_MAX"), &cfg.RetryMax); err != nil {
		return err
	}

	s.setBoolFromString("watch", env("WATCH"), &cfg.Watch)

	return nil
}
