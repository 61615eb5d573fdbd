package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 64 * 1024
)

// Upgrader is shared by the WebSocket handler. Origin checks are left to the
// CORS layer in front of it.
var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Inbound is a client frame: {"event": "task:create", "data": {...}}.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// ServeWebSocket runs the read and write pumps for conn until either side
// closes. The client is joined to its own user room before any frame is read.
func (h *Hub) ServeWebSocket(ctx context.Context, conn *websocket.Conn, client *Client) {
	h.Join(client, UserRoom(client.UserID))
	defer h.CloseClient(client)

	go h.writePump(conn, client)
	h.readPump(ctx, conn, client)
}

func (h *Hub) readPump(ctx context.Context, conn *websocket.Conn, client *Client) {
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		var in Inbound
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				client.log.Warn("websocket read failed", "error", err)
			}
			return
		}
		h.handleInbound(ctx, client, in)
	}
}

func (h *Hub) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Outbound:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg.Frame()); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-client.done:
			return
		}
	}
}

// handleInbound applies one client frame. Relays always target the sender's own
// room, whatever the payload claims.
func (h *Hub) handleInbound(ctx context.Context, client *Client, in Inbound) {
	own := UserRoom(client.UserID)
	if in.Event == "join-room" {
		var target string
		_ = json.Unmarshal(in.Data, &target)
		target = strings.TrimPrefix(strings.TrimSpace(target), "user:")
		if target != client.UserID.String() {
			h.reply(client, EventError, map[string]string{"message": "cannot join another user's room"})
			return
		}
		h.Join(client, own)
		h.reply(client, EventJoined, map[string]string{"room": own})
		return
	}
	if in.Event == "leave-room" {
		h.Leave(client, own)
		h.reply(client, EventLeft, map[string]string{"room": own})
		return
	}
	ev, ok := RelayEvent(in.Event)
	if !ok {
		h.reply(client, EventError, map[string]string{"message": "unknown event " + in.Event})
		return
	}
	var data any
	if len(in.Data) > 0 {
		if err := json.Unmarshal(in.Data, &data); err != nil {
			h.reply(client, EventError, map[string]string{"message": "invalid data"})
			return
		}
	}
	h.Relay(ctx, Message{Room: own, Event: ev, Data: data, ExcludeClientID: client.ID.String()})
}

// reply sends directly to one client without going through a room.
func (h *Hub) reply(client *Client, ev Event, data any) {
	select {
	case client.Outbound <- Message{Event: ev, Data: data}:
	default:
		client.log.Warn("Dropping reply; outbound buffer full", "event", string(ev))
	}
}
