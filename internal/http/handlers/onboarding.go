package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/lifepilot-backend/internal/http/response"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

type OnboardingHandler struct {
	onboarding services.OnboardingService
	dashboard  services.DashboardService
}

func NewOnboardingHandler(onboarding services.OnboardingService, dashboard services.DashboardService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, dashboard: dashboard}
}

// POST /onboarding
func (h *OnboardingHandler) Complete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var req services.OnboardingInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	res, err := h.onboarding.Complete(c.Request.Context(), uid, req)
	if err != nil {
		response.RespondAPIError(c, err, "onboarding_failed")
		return
	}
	response.RespondOK(c, res)
}

// GET /dashboard/stats
func (h *OnboardingHandler) DashboardStats(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	stats, err := h.dashboard.Stats(c.Request.Context(), uid)
	if err != nil {
		response.RespondAPIError(c, err, "dashboard_failed")
		return
	}
	response.RespondOK(c, stats)
}
