package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the file at path over the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}

	if err := Validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyEnvOverrides overrides config values with HALBRIDGE_* variables. Values
// that do not parse fail the load.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("HALBRIDGE_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("HALBRIDGE_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if err := envDuration("HALBRIDGE_TIMEOUT", &cfg.Server.Timeout); err != nil {
		return err
	}
	if v := os.Getenv("HALBRIDGE_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid HALBRIDGE_RATE_LIMIT %q: %w", v, err)
		}
		cfg.Server.RateLimit = f
	}
	if err := envInt("HALBRIDGE_BURST", &cfg.Server.Burst); err != nil {
		return err
	}
	if err := envInt("HALBRIDGE_CACHE_SIZE", &cfg.Server.CacheSize); err != nil {
		return err
	}
	if err := envDuration("HALBRIDGE_CACHE_TTL", &cfg.Server.CacheTTL); err != nil {
		return err
	}

	if v := os.Getenv("HALBRIDGE_SOCKET"); v != "" {
		cfg.IPC.Socket = v
	}
	if v := os.Getenv("HALBRIDGE_ADDR"); v != "" {
		cfg.IPC.Addr = v
	}

	if err := envDuration("HALBRIDGE_DISPATCH_TIMEOUT", &cfg.Router.DispatchTimeout); err != nil {
		return err
	}

	if v := os.Getenv("HALBRIDGE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("HALBRIDGE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	return nil
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = d
	return nil
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}
