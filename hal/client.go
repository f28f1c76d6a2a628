package hal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sirupsen/logrus"
	"github.com/tailbits/halbridge/events"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// Fetcher retrieves and modifies documents on the remote server.
type Fetcher interface {
	Fetch(ctx context.Context, href string) ([]byte, error)
	Send(ctx context.Context, method string, href string, body []byte) ([]byte, error)
}

// =============================================================================
// Client

var _ Fetcher = (*Client)(nil)

// ClientConfig configures the remote API client.
type ClientConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables throttling
	Burst     int
	CacheSize int // 0 disables caching
	CacheTTL  time.Duration
	Logger    logrus.FieldLogger
	Events    events.Publisher
	Transport http.RoundTripper
}

// Client fetches HAL documents over HTTP. GET responses are cached until they
// expire or any write succeeds.
type Client struct {
	base    *url.URL
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	cache   *expirable.LRU[string, []byte]
	log     logrus.FieldLogger
	events  events.Publisher
	offline atomic.Bool
}

// NewClient validates cfg and builds a client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("hal.NewClient: base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("hal.NewClient: base url %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		base:   base,
		apiKey: cfg.APIKey,
		http:   &http.Client{Timeout: timeout, Transport: cfg.Transport},
		log:    cfg.Logger,
		events: cfg.Events,
	}

	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	if c.events == nil {
		c.events = events.Discard{}
	}

	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	if cfg.CacheSize > 0 {
		c.cache = expirable.NewLRU[string, []byte](cfg.CacheSize, nil, cfg.CacheTTL)
	}

	return c, nil
}

// Fetch GETs href.
func (c *Client) Fetch(ctx context.Context, href string) ([]byte, error) {
	if c.cache != nil {
		if data, ok := c.cache.Get(href); ok {
			return data, nil
		}
	}

	data, err := c.do(ctx, http.MethodGet, href, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Add(href, data)
	}

	return data, nil
}

// Send issues a write. A successful write purges the cache.
func (c *Client) Send(ctx context.Context, method string, href string, body []byte) ([]byte, error) {
	data, err := c.do(ctx, method, href, body)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		c.cache.Purge()
	}

	return data, nil
}

func (c *Client) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *Client) do(ctx context.Context, method string, href string, body []byte) ([]byte, error) {
	target, err := c.resolve(href)
	if err != nil {
		return nil, &RemoteFetchError{Href: href, Message: "invalid href", Err: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RemoteFetchError{Href: href, Message: "rate limiter", Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &RemoteFetchError{Href: href, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/hal+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.SetBasicAuth("apikey", c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.markOffline(err)
		return nil, &RemoteFetchError{Href: href, Err: err}
	}
	defer resp.Body.Close()
	c.markOnline()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RemoteFetchError{Href: href, Status: resp.StatusCode, Message: "read body", Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"href":     href,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("remote request")

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized {
			c.events.Publish(events.Status{Kind: events.KindAuth, Message: "the server rejected the API key", Path: href})
		}
		return nil, &RemoteFetchError{Href: href, Status: resp.StatusCode, Message: errorMessage(data)}
	}

	return data, nil
}

func (c *Client) markOffline(err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	if c.offline.CompareAndSwap(false, true) {
		c.log.WithError(err).Warn("remote server unreachable")
		c.events.Publish(events.Status{Kind: events.KindOffline, Message: err.Error()})
	}
}

func (c *Client) markOnline() {
	if c.offline.CompareAndSwap(true, false) {
		c.log.Info("remote server reachable again")
		c.events.Publish(events.Status{Kind: events.KindOnline})
	}
}

const maxErrorBody = 256

// errorMessage extracts the message of a HAL error document.
func errorMessage(data []byte) string {
	if gjson.ValidBytes(data) {
		doc := gjson.ParseBytes(data)
		if doc.Get("_type").String() == TypeError {
			if msg := doc.Get("message").String(); msg != "" {
				return msg
			}
		}
	}
	msg := strings.TrimSpace(string(data))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}
