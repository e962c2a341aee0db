package server

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamhub/internal/events"
	"teamhub/internal/presence"
)

// newTestClient builds a client wired for routing assertions only; it has
// no live connection and its pumps are never started.
func newTestClient(hub *Hub, username string) *Client {
	return &Client{
		hub:      hub,
		send:     make(chan []byte, 8),
		userID:   uuid.New(),
		username: username,
		clientID: uuid.New().String(),
		dests:    make(map[events.Destination]struct{}),
		logger:   NewWebSocketLogger(),
	}
}

func attach(h *Hub, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.clientID] = c
	h.subscribeLocked(c, events.UserDestination(c.userID))
}

func drain(t *testing.T, c *Client) []events.Envelope {
	t.Helper()
	var out []events.Envelope
	for {
		select {
		case data := <-c.send:
			var env events.Envelope
			require.NoError(t, json.Unmarshal(data, &env))
			out = append(out, env)
		default:
			return out
		}
	}
}

func TestBroadcastReachesOnlySubscribers(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	attach(hub, alice)
	attach(hub, bob)

	roomDest := events.RoomDestination(uuid.New())
	hub.Subscribe(alice, roomDest)

	hub.Broadcast(roomDest, events.NewEnvelope("receive_message", nil))

	assert.Len(t, drain(t, alice), 1)
	assert.Empty(t, drain(t, bob))
}

func TestBroadcastToUserDestination(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	attach(hub, alice)
	attach(hub, bob)

	hub.Broadcast(events.UserDestination(bob.userID), events.NewEnvelope("mention_notification", nil))

	assert.Empty(t, drain(t, alice))
	got := drain(t, bob)
	require.Len(t, got, 1)
	assert.Equal(t, "mention_notification", got[0].Type)
}

func TestBroadcastExceptSkipsOneConnection(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	attach(hub, alice)
	attach(hub, bob)

	roomDest := events.RoomDestination(uuid.New())
	hub.Subscribe(alice, roomDest)
	hub.Subscribe(bob, roomDest)

	hub.BroadcastExcept(roomDest, events.NewEnvelope("user_typing", nil), alice.clientID)

	assert.Empty(t, drain(t, alice))
	assert.Len(t, drain(t, bob), 1)
}

func TestBroadcastGlobalReachesEveryConnection(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	bob := newTestClient(hub, "bob")
	attach(hub, alice)
	attach(hub, bob)

	hub.BroadcastGlobal(events.NewEnvelope("online_count_updated", events.OnlineCountPayload{Count: 2}))

	assert.Len(t, drain(t, alice), 1)
	assert.Len(t, drain(t, bob), 1)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	attach(hub, alice)

	roomDest := events.RoomDestination(uuid.New())
	hub.Subscribe(alice, roomDest)
	hub.Unsubscribe(alice, roomDest)

	hub.Broadcast(roomDest, events.NewEnvelope("receive_message", nil))
	assert.Empty(t, drain(t, alice))
}

func TestSlowSubscriberDroppedNotBlocked(t *testing.T) {
	hub := NewHub(presence.NewRegistry(), nil)
	alice := newTestClient(hub, "alice")
	alice.send = make(chan []byte) // unbuffered, nobody reading
	attach(hub, alice)

	// Must return immediately even though nothing reads the channel.
	hub.BroadcastGlobal(events.NewEnvelope("user_connected", nil))
	assert.Empty(t, alice.send)
}
