package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/http/response"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

var errAIUnavailable = errors.New("AI service is temporarily unavailable, please try again later")

type AIHandler struct {
	log         *logger.Logger
	chat        services.ChatService
	suggestions services.SuggestionService
	history     services.HistoryService
	metrics     *observability.Metrics
}

func NewAIHandler(
	log *logger.Logger,
	chat services.ChatService,
	suggestions services.SuggestionService,
	history services.HistoryService,
	metrics *observability.Metrics,
) *AIHandler {
	return &AIHandler{
		log:         log.With("handler", "AIHandler"),
		chat:        chat,
		suggestions: suggestions,
		history:     history,
		metrics:     metrics,
	}
}

// POST /ai/chat
// body: { "messages": [{role, content}], "message": "..." }
func (h *AIHandler) Chat(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req services.ChatInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	reply, err := h.chat.Chat(c.Request.Context(), uid, req)
	if err != nil {
		if errors.Is(err, services.ErrProvidersExhausted) {
			h.log.Error("AI chat failed", "user_id", uid.String(), "error", err)
			response.RespondError(c, http.StatusInternalServerError, "providers_exhausted", errAIUnavailable)
			return
		}
		response.RespondAPIError(c, err, "chat_failed")
		return
	}
	response.RespondOK(c, reply)
}

// GET /ai/providers
func (h *AIHandler) Providers(c *gin.Context) {
	response.RespondOK(c, gin.H{"providers": h.chat.Providers()})
}

// GET /ai/suggestions
func (h *AIHandler) ListSuggestions(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	out, err := h.suggestions.List(c.Request.Context(), uid)
	if err != nil {
		response.RespondAPIError(c, err, "list_suggestions_failed")
		return
	}
	response.RespondOK(c, out)
}

// POST /ai/suggestions/:id/approve
func (h *AIHandler) Approve(c *gin.Context) { h.resolve(c, true) }

// POST /ai/suggestions/:id/reject
func (h *AIHandler) Reject(c *gin.Context) { h.resolve(c, false) }

func (h *AIHandler) resolve(c *gin.Context, approved bool) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	// Any id that names no pending suggestion is a 404, malformed ones included.
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("suggestion %q not found", c.Param("id")))
		return
	}
	resolve, code := h.suggestions.Reject, "reject_failed"
	if approved {
		resolve, code = h.suggestions.Approve, "approve_failed"
	}
	kind, err := resolve(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondAPIError(c, err, code)
		return
	}
	h.metrics.IncSuggestionResolved(string(kind), approved)
	response.RespondOK(c, gin.H{"success": true, "type": kind})
}

// GET /ai/history?limit=&offset=
func (h *AIHandler) History(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	logs, err := h.history.List(c.Request.Context(), uid, queryInt(c, "limit", services.DefaultHistoryLimit), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondAPIError(c, err, "history_failed")
		return
	}
	response.RespondOK(c, logs)
}
