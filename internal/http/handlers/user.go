package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepilot-backend/internal/http/response"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "get_me_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /me
// body: { "name": "..." }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := uh.userService.UpdateName(c.Request.Context(), req.Name)
	if err != nil {
		response.RespondAPIError(c, err, "update_me_failed")
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// GET /settings/ai
func (uh *UserHandler) GetAISettings(c *gin.Context) {
	settings, err := uh.userService.GetAISettings(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err, "get_settings_failed")
		return
	}
	response.RespondOK(c, settings)
}

// PUT /settings/ai
// body: any subset of the settings document.
func (uh *UserHandler) UpdateAISettings(c *gin.Context) {
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, 64<<10))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if !json.Valid(raw) {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidJSON)
		return
	}
	settings, err := uh.userService.UpdateAISettings(c.Request.Context(), json.RawMessage(raw))
	if err != nil {
		response.RespondAPIError(c, err, "update_settings_failed")
		return
	}
	response.RespondOK(c, settings)
}
