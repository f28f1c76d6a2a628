package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/sirupsen/logrus"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks that cfg can start the host process.
func Validate(cfg Config) error {
	if cfg.Server.BaseURL == "" {
		return fmt.Errorf("%w: server.base_url must be set", ErrInvalidConfig)
	}
	u, err := url.Parse(cfg.Server.BaseURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: server.base_url %q must be an absolute http(s) URL", ErrInvalidConfig, cfg.Server.BaseURL)
	}
	if cfg.Server.APIKey == "" {
		return fmt.Errorf("%w: server.api_key must be set", ErrInvalidConfig)
	}
	if cfg.Server.Timeout < 0 || cfg.Server.CacheTTL < 0 || cfg.Router.DispatchTimeout < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidConfig)
	}
	if cfg.Server.RateLimit < 0 || cfg.Server.Burst < 0 || cfg.Server.CacheSize < 0 {
		return fmt.Errorf("%w: server limits must not be negative", ErrInvalidConfig)
	}

	if cfg.IPC.Socket == "" {
		if cfg.IPC.Addr == "" {
			return fmt.Errorf("%w: one of ipc.socket or ipc.addr must be set", ErrInvalidConfig)
		}
		host, _, err := net.SplitHostPort(cfg.IPC.Addr)
		if err != nil {
			return fmt.Errorf("%w: ipc.addr %q: %v", ErrInvalidConfig, cfg.IPC.Addr, err)
		}
		if ip := net.ParseIP(host); host != "localhost" && (ip == nil || !ip.IsLoopback()) {
			return fmt.Errorf("%w: ipc.addr %q must be a loopback address", ErrInvalidConfig, cfg.IPC.Addr)
		}
	}

	if _, err := logrus.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q must be text or json", ErrInvalidConfig, cfg.Log.Format)
	}

	return nil
}
