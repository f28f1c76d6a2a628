package ipc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tailbits/halbridge"
	"github.com/tailbits/halbridge/events"
)

// Client is the presentation-side end of the transport.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// NewClient connects through the unix socket when socket is set, otherwise
// to the TCP address addr.
func NewClient(socket, addr string) *Client {
	if socket == "" {
		return NewClientURL("http://"+addr, nil)
	}

	dial := func(ctx context.Context, _, _ string) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "unix", socket)
	}

	return &Client{
		baseURL: "http://" + unixHost,
		http:    &http.Client{Transport: &http.Transport{DialContext: dial}},
		dialer:  &websocket.Dialer{NetDialContext: dial, HandshakeTimeout: 10 * time.Second},
	}
}

// NewClientURL talks to a server at baseURL. A nil hc uses http.DefaultClient.
func NewClientURL(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
		dialer:  &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Do sends one routed request and returns the revived response. Routing
// outcomes, NotFound and Error included, are carried in the envelope; the
// error is reserved for transport failures.
func (c *Client) Do(ctx context.Context, verb halbridge.Verb, path string, data any) (*ResponseEnvelope, error) {
	env := RequestEnvelope{ID: uuid.NewString(), Verb: string(verb), Path: path}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("ipc.Do: encode payload: %w", err)
		}
		env.Data = raw
	}

	body, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("ipc.Do: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/dispatch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ipc.Do: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipc.Do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ipc.Do: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipc.Do: %s: %s", resp.Status, bytes.TrimSpace(raw))
	}

	return DecodeResponse(raw)
}

// Events subscribes to the status stream. The channel closes when the stream
// ends; stop ends it early and is safe to call more than once. Only one
// subscriber is admitted at a time: a second gets events.ErrAlreadySubscribed.
func (c *Client) Events(ctx context.Context) (<-chan events.Status, func(), error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.wsURL("/events"), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusConflict {
			return nil, nil, events.ErrAlreadySubscribed
		}
		return nil, nil, fmt.Errorf("ipc.Events: %w", err)
	}

	out := make(chan events.Status, 16)
	done := make(chan struct{})

	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			conn.Close()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			stop()
		case <-done:
		}
	}()

	go func() {
		defer close(out)
		for {
			var st events.Status
			if err := conn.ReadJSON(&st); err != nil {
				stop()
				return
			}
			select {
			case out <- st:
			case <-done:
				return
			}
		}
	}()

	return out, stop, nil
}

func (c *Client) wsURL(path string) string {
	switch {
	case strings.HasPrefix(c.baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(c.baseURL, "https://") + path
	default:
		return "ws://" + strings.TrimPrefix(c.baseURL, "http://") + path
	}
}
