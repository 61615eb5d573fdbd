package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/lifepilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lifepilot-backend/internal/http/middleware"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	Metrics        *observability.Metrics
	MetricsEnabled bool

	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	UserHandler       *httpH.UserHandler
	AIHandler         *httpH.AIHandler
	OnboardingHandler *httpH.OnboardingHandler
	RealtimeHandler   *httpH.RealtimeHandler

	TaskHandler    *httpH.EntityHandler
	GoalHandler    *httpH.EntityHandler
	HabitHandler   *httpH.EntityHandler
	JournalHandler *httpH.EntityHandler
	RoutineHandler *httpH.EntityHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.MetricsEnabled && cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/refresh", cfg.AuthHandler.Refresh)
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Realtime
		if cfg.RealtimeHandler != nil {
			protected.GET("/realtime/sse", cfg.RealtimeHandler.SSEStream)
			protected.GET("/realtime/ws", cfg.RealtimeHandler.WebSocket)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.PATCH("/me", cfg.UserHandler.UpdateMe)
			protected.GET("/settings/ai", cfg.UserHandler.GetAISettings)
			protected.PUT("/settings/ai", cfg.UserHandler.UpdateAISettings)
		}

		// AI
		if cfg.AIHandler != nil {
			protected.POST("/ai/chat", cfg.AIHandler.Chat)
			protected.GET("/ai/providers", cfg.AIHandler.Providers)
			protected.GET("/ai/suggestions", cfg.AIHandler.ListSuggestions)
			protected.POST("/ai/suggestions/:id/approve", cfg.AIHandler.Approve)
			protected.POST("/ai/suggestions/:id/reject", cfg.AIHandler.Reject)
			protected.GET("/ai/history", cfg.AIHandler.History)
		}

		if cfg.OnboardingHandler != nil {
			protected.POST("/onboarding", cfg.OnboardingHandler.Complete)
			protected.GET("/dashboard/stats", cfg.OnboardingHandler.DashboardStats)
		}

		// Planner
		for prefix, h := range map[string]*httpH.EntityHandler{
			"/tasks":    cfg.TaskHandler,
			"/goals":    cfg.GoalHandler,
			"/habits":   cfg.HabitHandler,
			"/journals": cfg.JournalHandler,
			"/routines": cfg.RoutineHandler,
		} {
			if h != nil {
				h.Register(protected.Group(prefix))
			}
		}
	}

	return r
}
