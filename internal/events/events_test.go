package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishSubscribe(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Event, 4)
	require.NoError(t, bus.Subscribe(ctx, Transcript, func(e Event) { got <- e }))
	require.NoError(t, bus.Subscribe(ctx, RecordingFailed, func(e Event) { got <- e }))

	require.NoError(t, bus.Publish(Event{Topic: Transcript, Session: "s1", Text: "hello world", Words: 2}))

	select {
	case e := <-got:
		assert.Equal(t, Transcript, e.Topic)
		assert.Equal(t, "s1", e.Session)
		assert.Equal(t, "hello world", e.Text)
		assert.Equal(t, 2, e.Words)
		assert.False(t, e.At.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("событие не получено")
	}

	select {
	case e := <-got:
		t.Fatalf("лишнее событие: %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishWithoutSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	assert.NoError(t, bus.Publish(Event{Topic: RecordingStarted}))
}
