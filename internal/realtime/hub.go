package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const (
	outboundBuffer = 32
	sseHeartbeat   = 15 * time.Second
)

type Transport string

const (
	TransportSSE       Transport = "sse"
	TransportWebSocket Transport = "ws"
)

type Client struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Transport Transport
	Outbound  chan Message

	rooms     map[string]bool
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

// Hub fans messages out to rooms. Delivery is at-most-once: a client whose
// buffer is full misses the message.
type Hub struct {
	mu    sync.RWMutex
	log   *logger.Logger
	rooms map[string]map[*Client]bool
	relay func(ctx context.Context, msg Message)
}

func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		log:   log.With("component", "RealtimeHub"),
		rooms: make(map[string]map[*Client]bool),
	}
	h.relay = func(_ context.Context, msg Message) { h.Broadcast(msg) }
	return h
}

// SetRelay routes client-originated relays, e.g. through a cross-instance bus.
func (h *Hub) SetRelay(fn func(ctx context.Context, msg Message)) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.relay = fn
	h.mu.Unlock()
}

func (h *Hub) NewClient(userID uuid.UUID, transport Transport) *Client {
	id := uuid.New()
	return &Client{
		ID:        id,
		UserID:    userID,
		Transport: transport,
		Outbound:  make(chan Message, outboundBuffer),
		rooms:     make(map[string]bool),
		done:      make(chan struct{}),
		log:       h.log.With("client_id", id.String(), "transport", string(transport)),
	}
}

// Join is idempotent.
func (h *Hub) Join(client *Client, room string) {
	room = strings.TrimSpace(room)
	if room == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	client.rooms[room] = true
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]bool)
		h.rooms[room] = members
	}
	members[client] = true
	h.log.Debug("client joined room", "client_id", client.ID.String(), "room", room)
}

func (h *Hub) Leave(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(client, room)
}

func (h *Hub) leaveLocked(client *Client, room string) {
	delete(client.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range client.rooms {
		h.leaveLocked(client, room)
	}
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) Broadcast(msg Message) {
	if msg.Room == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[msg.Room] {
		if msg.ExcludeClientID != "" && c.ID.String() == msg.ExcludeClientID {
			continue
		}
		select {
		case c.Outbound <- msg:
		default:
			h.log.Warn("Dropping realtime message; outbound buffer full", "client_id", c.ID.String(), "event", string(msg.Event))
		}
	}
}

// Relay forwards a client-originated event to its peers through the configured relay.
func (h *Hub) Relay(ctx context.Context, msg Message) {
	h.mu.RLock()
	fn := h.relay
	h.mu.RUnlock()
	fn(ctx, msg)
}

// CloseClient removes the client from every room and closes its channels. Safe to call twice.
func (h *Hub) CloseClient(client *Client) {
	client.closeOnce.Do(func() {
		close(client.done)
		h.RemoveClient(client)
		close(client.Outbound)
	})
}

// ServeSSE streams the client's messages until the request ends or the client is closed.
func (h *Hub) ServeSSE(w http.ResponseWriter, r *http.Request, client *Client) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported!", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := r.Context()
	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			client.log.Debug("SSE client context done", "err", ctx.Err())
			return
		case <-client.done:
			return
		case <-heartbeat.C:
			_, _ = fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg, ok := <-client.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(msg.Frame())
			if err != nil {
				client.log.Warn("Failed to marshal realtime frame", "error", err)
				continue
			}
			_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Event, raw)
			flusher.Flush()
		}
	}
}
