package events_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tailbits/halbridge/events"
	"gotest.tools/v3/assert"
)

func TestChannel(t *testing.T) {
	t.Run("delivers to the subscriber in order", func(t *testing.T) {
		ch := events.NewChannel(4)
		out, stop, err := ch.Subscribe(context.Background())
		assert.NilError(t, err)
		defer stop()

		ch.Publish(events.Status{Kind: events.KindOffline})
		ch.Publish(events.Status{Kind: events.KindOnline})

		first := <-out
		second := <-out
		assert.Equal(t, first.Kind, events.KindOffline)
		assert.Equal(t, second.Kind, events.KindOnline)
		assert.Assert(t, !first.At.IsZero())
	})

	t.Run("rejects a second subscriber", func(t *testing.T) {
		ch := events.NewChannel(1)
		_, stop, err := ch.Subscribe(context.Background())
		assert.NilError(t, err)
		defer stop()

		_, _, err = ch.Subscribe(context.Background())
		assert.Assert(t, errors.Is(err, events.ErrAlreadySubscribed))
	})

	t.Run("teardown allows a new subscriber and closes the stream", func(t *testing.T) {
		ch := events.NewChannel(1)
		out, stop, err := ch.Subscribe(context.Background())
		assert.NilError(t, err)

		stop()
		stop()
		_, open := <-out
		assert.Assert(t, !open)

		_, stop2, err := ch.Subscribe(context.Background())
		assert.NilError(t, err)
		stop2()
	})

	t.Run("drops without a subscriber or when the buffer is full", func(t *testing.T) {
		ch := events.NewChannel(1)
		ch.Publish(events.Status{Kind: events.KindDispatch})
		assert.Equal(t, ch.Dropped(), uint64(1))

		_, stop, err := ch.Subscribe(context.Background())
		assert.NilError(t, err)
		defer stop()

		ch.Publish(events.Status{Kind: events.KindDispatch})
		ch.Publish(events.Status{Kind: events.KindDispatch})
		assert.Equal(t, ch.Dropped(), uint64(2))
	})

	t.Run("context cancellation tears down", func(t *testing.T) {
		ch := events.NewChannel(1)
		ctx, cancel := context.WithCancel(context.Background())
		out, _, err := ch.Subscribe(ctx)
		assert.NilError(t, err)

		cancel()
		for range out {
		}
	})
}
