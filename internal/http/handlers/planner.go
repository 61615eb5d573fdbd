package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepilot-backend/internal/http/response"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

// EntityHandler serves owner-scoped CRUD for one planner kind.
type EntityHandler struct {
	svc services.EntityService
}

func NewEntityHandler(svc services.EntityService) *EntityHandler {
	return &EntityHandler{svc: svc}
}

// Register mounts the five CRUD routes on rg.
func (h *EntityHandler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.PATCH("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

func (h *EntityHandler) code(op string) string {
	return op + "_" + string(h.svc.Kind()) + "_failed"
}

func (h *EntityHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	rows, err := h.svc.List(c.Request.Context(), uid)
	if err != nil {
		response.RespondAPIError(c, err, h.code("list"))
		return
	}
	response.RespondOK(c, rows)
}

func (h *EntityHandler) Get(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, err := h.svc.Get(c.Request.Context(), uid, id)
	if err != nil {
		response.RespondAPIError(c, err, h.code("get"))
		return
	}
	response.RespondOK(c, row)
}

func (h *EntityHandler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	in, ok := bindObject(c)
	if !ok {
		return
	}
	row, err := h.svc.Create(c.Request.Context(), uid, in)
	if err != nil {
		response.RespondAPIError(c, err, h.code("create"))
		return
	}
	response.RespondCreated(c, row)
}

func (h *EntityHandler) Update(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, ok := bindObject(c)
	if !ok {
		return
	}
	row, err := h.svc.Update(c.Request.Context(), uid, id, in)
	if err != nil {
		response.RespondAPIError(c, err, h.code("update"))
		return
	}
	response.RespondOK(c, row)
}

func (h *EntityHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, id); err != nil {
		response.RespondAPIError(c, err, h.code("delete"))
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

func bindObject(c *gin.Context) (map[string]any, bool) {
	var in map[string]any
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	if in == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errInvalidJSON)
		return nil, false
	}
	return in, true
}
