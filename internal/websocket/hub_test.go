package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishEncodesEventFrame(t *testing.T) {
	hub := NewHub()

	hub.Publish(EventAppointmentApproved, map[string]string{"id": "abc"})

	select {
	case raw := <-hub.Broadcast:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		assert.Equal(t, EventAppointmentApproved, event.Type)
		assert.False(t, event.At.IsZero())
	case <-time.After(time.Second):
		t.Fatal("no event queued")
	}
}

func TestPublishOnNilHubIsSafe(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() {
		hub.Publish(EventVisitCheckedIn, nil)
	})
}

func TestPublishDropsWhenQueueFull(t *testing.T) {
	hub := NewHub()
	for i := 0; i < cap(hub.Broadcast)+10; i++ {
		hub.Publish(EventVisitCheckedOut, i)
	}
	// The queue holds at most its capacity; the rest were dropped silently.
	assert.Equal(t, cap(hub.Broadcast), len(hub.Broadcast))
}
