// Package config loads the host process configuration from a YAML file with
// HALBRIDGE_* environment overrides.
package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge/events"
	"github.com/tailbits/halbridge/hal"
)

// ServerSection configures access to the remote hypermedia API.
type ServerSection struct {
	// BaseURL is the server root, e.g. https://projects.example.com. Resource
	// hrefs such as /api/v3/projects resolve against it.
	BaseURL string `yaml:"base_url"`

	// APIKey is sent as basic auth with the user "apikey".
	APIKey string `yaml:"api_key"`

	Timeout time.Duration `yaml:"timeout"`

	// RateLimit caps requests per second; 0 disables throttling.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	// CacheSize is the number of GET documents kept; 0 disables the cache.
	CacheSize int           `yaml:"cache_size"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

// IPCSection selects the listener for the presentation process. Socket wins
// over Addr when both are set.
type IPCSection struct {
	Socket string `yaml:"socket"`
	Addr   string `yaml:"addr"`
}

type RouterSection struct {
	DispatchTimeout time.Duration `yaml:"dispatch_timeout"`
}

type LogSection struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Server ServerSection `yaml:"server"`
	IPC    IPCSection    `yaml:"ipc"`
	Router RouterSection `yaml:"router"`
	Log    LogSection    `yaml:"log"`
}

// Default returns the configuration used for keys a file leaves out.
func Default() Config {
	return Config{
		Server: ServerSection{
			Timeout:   30 * time.Second,
			RateLimit: 10,
			Burst:     5,
			CacheSize: 256,
			CacheTTL:  time.Minute,
		},
		IPC: IPCSection{
			Addr: "127.0.0.1:7787",
		},
		Router: RouterSection{
			DispatchTimeout: 30 * time.Second,
		},
		Log: LogSection{
			Level:  "info",
			Format: "text",
		},
	}
}

// ClientConfig derives the HAL client configuration.
func (c Config) ClientConfig(log logrus.FieldLogger, pub events.Publisher) hal.ClientConfig {
	return hal.ClientConfig{
		BaseURL:   c.Server.BaseURL,
		APIKey:    c.Server.APIKey,
		Timeout:   c.Server.Timeout,
		RateLimit: c.Server.RateLimit,
		Burst:     c.Server.Burst,
		CacheSize: c.Server.CacheSize,
		CacheTTL:  c.Server.CacheTTL,
		Logger:    log,
		Events:    pub,
	}
}
