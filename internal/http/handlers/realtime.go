package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

type RealtimeHandler struct {
	log     *logger.Logger
	hub     *realtime.Hub
	metrics *observability.Metrics
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.Hub, metrics *observability.Metrics) *RealtimeHandler {
	return &RealtimeHandler{
		log:     log.With("handler", "RealtimeHandler"),
		hub:     hub,
		metrics: metrics,
	}
}

// GET /realtime/sse
// Push-only stream of the caller's user room.
func (h *RealtimeHandler) SSEStream(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	client := h.hub.NewClient(uid, realtime.TransportSSE)
	h.hub.Join(client, realtime.UserRoom(uid))
	h.metrics.AddRealtimeClients(string(realtime.TransportSSE), 1)
	defer func() {
		h.hub.CloseClient(client)
		h.metrics.AddRealtimeClients(string(realtime.TransportSSE), -1)
	}()

	h.log.Debug("SSE stream open", "user_id", uid.String(), "client_id", client.ID.String(),
		"room_clients", h.hub.RoomSize(realtime.UserRoom(uid)))
	h.hub.ServeSSE(c.Writer, c.Request, client)
}

// GET /realtime/ws
// Bidirectional socket. The upgraded connection is owned by the hub's pumps.
func (h *RealtimeHandler) WebSocket(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	conn, err := realtime.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	client := h.hub.NewClient(uid, realtime.TransportWebSocket)
	h.metrics.AddRealtimeClients(string(realtime.TransportWebSocket), 1)
	defer h.metrics.AddRealtimeClients(string(realtime.TransportWebSocket), -1)

	h.log.Debug("websocket open", "user_id", uid.String(), "client_id", client.ID.String())
	h.hub.ServeWebSocket(c.Request.Context(), conn, client)
}
