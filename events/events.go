// Package events carries status notifications from the host process to the
// presentation process.
package events

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrAlreadySubscribed is returned when a second consumer tries to attach to a
// channel that already has one.
var ErrAlreadySubscribed = errors.New("events: channel already has a subscriber")

// Kind classifies a status notification.
type Kind string

const (
	KindOnline   Kind = "online"
	KindOffline  Kind = "offline"
	KindAuth     Kind = "unauthorized"
	KindDispatch Kind = "dispatch"
)

// Status is one notification pushed to the presentation process.
type Status struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message,omitempty"`
	Path    string    `json:"path,omitempty"`
	At      time.Time `json:"at"`
}

// Publisher is the producer side of a channel.
type Publisher interface {
	Publish(Status)
}

// Channel is a single-producer, single-consumer asynchronous channel. Publish
// never blocks: when no consumer is attached or the consumer lags behind the
// buffer, notifications are dropped and counted.
type Channel struct {
	mu      sync.Mutex
	buf     int
	out     chan Status
	dropped uint64
}

var _ Publisher = (*Channel)(nil)

// NewChannel returns a channel buffering up to size notifications.
func NewChannel(size int) *Channel {
	if size < 1 {
		size = 1
	}
	return &Channel{buf: size}
}

// Publish hands s to the consumer if one is attached.
func (c *Channel) Publish(s Status) {
	if s.At.IsZero() {
		s.At = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.out == nil {
		c.dropped++
		return
	}

	select {
	case c.out <- s:
	default:
		c.dropped++
	}
}

// Subscribe attaches the consumer. The returned teardown detaches it and closes
// the receive channel; it is also invoked when ctx is done. Teardown is safe
// to call more than once.
func (c *Channel) Subscribe(ctx context.Context) (<-chan Status, func(), error) {
	c.mu.Lock()
	if c.out != nil {
		c.mu.Unlock()
		return nil, nil, ErrAlreadySubscribed
	}
	out := make(chan Status, c.buf)
	c.out = out
	c.mu.Unlock()

	var once sync.Once
	stop := make(chan struct{})
	teardown := func() {
		once.Do(func() {
			close(stop)
			c.mu.Lock()
			if c.out == out {
				c.out = nil
			}
			c.mu.Unlock()
			close(out)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			teardown()
		case <-stop:
		}
	}()

	return out, teardown, nil
}

// Dropped reports how many notifications were discarded.
func (c *Channel) Dropped() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Discard is a Publisher that drops everything.
type Discard struct{}

func (Discard) Publish(Status) {}
