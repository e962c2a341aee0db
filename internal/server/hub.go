package server

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"teamhub/internal/events"
	"teamhub/internal/presence"
	"teamhub/internal/redis"
)

// Hub routes envelopes to live connections. It owns the connection set and
// the destination subscription tables; it knows nothing about message
// semantics. Registration and teardown run on the hub goroutine, fan-out
// runs on the caller's goroutine under a read lock.
type Hub struct {
	clients map[string]*Client
	subs    map[events.Destination]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client

	registry *presence.Registry
	cache    *redis.CacheStore
	logger   *WebSocketLogger

	mu        sync.RWMutex
	stopChan  chan struct{}
	isRunning int32
}

// NewHub creates a hub. The cache may be nil when Redis is not configured.
func NewHub(registry *presence.Registry, cache *redis.CacheStore) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		subs:       make(map[events.Destination]map[*Client]struct{}),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		registry:   registry,
		cache:      cache,
		logger:     NewWebSocketLogger(),
		stopChan:   make(chan struct{}),
	}
}

// Run processes registration events until Stop is called.
func (h *Hub) Run() {
	atomic.StoreInt32(&h.isRunning, 1)
	defer atomic.StoreInt32(&h.isRunning, 0)

	for {
		select {
		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.handleUnregister(client)

		case <-h.stopChan:
			return
		}
	}
}

func (h *Hub) handleRegister(client *Client) {
	h.mu.Lock()
	h.clients[client.clientID] = client
	h.subscribeLocked(client, events.UserDestination(client.userID))
	count := h.registry.MarkConnected(client.userID)
	h.mu.Unlock()

	h.logger.Info("client connected", client.userID, client.clientID)

	go client.writePump()
	go client.readPump()

	h.BroadcastGlobal(events.NewEnvelope(events.EventUserConnected, events.UserPresencePayload{
		Username: client.username,
		Message:  client.username + " joined the chat",
	}))
	h.BroadcastGlobal(events.NewEnvelope(events.EventOnlineCountUpdated, events.OnlineCountPayload{
		Count: count,
	}))
}

func (h *Hub) handleUnregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.clientID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.clientID)
	for dest := range client.dests {
		h.unsubscribeLocked(client, dest)
	}
	count := h.registry.MarkDisconnected(client.userID)
	h.mu.Unlock()

	h.removeClient(client)
	h.cache.TouchLastSeen(context.Background(), client.userID)
	h.logger.Info("client disconnected", client.userID, client.clientID)

	h.BroadcastGlobal(events.NewEnvelope(events.EventUserDisconnected, events.UserPresencePayload{
		Username: client.username,
		Message:  client.username + " left the chat",
	}))
	h.BroadcastGlobal(events.NewEnvelope(events.EventOnlineCountUpdated, events.OnlineCountPayload{
		Count: count,
	}))
}

func (h *Hub) removeClient(client *Client) {
	close(client.send)
	client.conn.Close()
}

// Subscribe adds the client to a destination's fan-out set.
func (h *Hub) Subscribe(client *Client, dest events.Destination) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribeLocked(client, dest)
}

// Unsubscribe removes the client from a destination's fan-out set.
func (h *Hub) Unsubscribe(client *Client, dest events.Destination) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.unsubscribeLocked(client, dest)
}

func (h *Hub) subscribeLocked(client *Client, dest events.Destination) {
	if h.subs[dest] == nil {
		h.subs[dest] = make(map[*Client]struct{})
	}
	h.subs[dest][client] = struct{}{}
	client.dests[dest] = struct{}{}
}

func (h *Hub) unsubscribeLocked(client *Client, dest events.Destination) {
	if set, ok := h.subs[dest]; ok {
		delete(set, client)
		if len(set) == 0 {
			delete(h.subs, dest)
		}
	}
	delete(client.dests, dest)
}

// Broadcast delivers the envelope to every connection subscribed to dest.
func (h *Hub) Broadcast(dest events.Destination, env events.Envelope) {
	h.BroadcastExcept(dest, env, "")
}

// BroadcastExcept delivers to dest's subscribers, skipping the connection
// with the given client id. Slow subscribers are dropped rather than
// blocking the fan-out.
func (h *Hub) BroadcastExcept(dest events.Destination, env events.Envelope, exceptClientID string) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.subs[dest] {
		if client.clientID == exceptClientID {
			continue
		}
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full", client.userID, client.clientID)
		}
	}
}

// BroadcastGlobal delivers the envelope to every live connection.
func (h *Hub) BroadcastGlobal(env events.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("client send buffer full", client.userID, client.clientID)
		}
	}
}

// Stop shuts the hub down and closes every connection.
func (h *Hub) Stop() {
	close(h.stopChan)

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.clients {
		h.removeClient(client)
	}
	h.clients = make(map[string]*Client)
	h.subs = make(map[events.Destination]map[*Client]struct{})
}

var _ events.Broadcaster = (*Hub)(nil)
