package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish("project.status_changed", map[string]any{"projectId": 1})

	select {
	case env := <-ch:
		assert.Equal(t, "project.status_changed", env.Event)
		assert.WithinDuration(t, time.Now(), env.Time, time.Second)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Publish("asset.status_changed", nil)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked with no subscribers")
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	// Overfill the buffer without draining.
	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish("project.status_changed", i)
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestCancelRemovesSubscriber(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	cancel()

	hub.Publish("project.completed", nil)
	require.Empty(t, ch)
}
