package app

import (
	"github.com/yungbote/lifepilot-backend/internal/http"
	httpH "github.com/yungbote/lifepilot-backend/internal/http/handlers"
	httpMW "github.com/yungbote/lifepilot-backend/internal/http/middleware"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	User       *httpH.UserHandler
	AI         *httpH.AIHandler
	Onboarding *httpH.OnboardingHandler
	Realtime   *httpH.RealtimeHandler
	Tasks      *httpH.EntityHandler
	Goals      *httpH.EntityHandler
	Habits     *httpH.EntityHandler
	Journals   *httpH.EntityHandler
	Routines   *httpH.EntityHandler
}

func wireMiddleware(log *logger.Logger, svcs Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, svcs.Auth)}
}

func wireHandlers(log *logger.Logger, svcs Services, hub *realtime.Hub, metrics *observability.Metrics, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(db),
		Auth:       httpH.NewAuthHandler(svcs.Auth),
		User:       httpH.NewUserHandler(svcs.User),
		AI:         httpH.NewAIHandler(log, svcs.Chat, svcs.Suggestions, svcs.History, metrics),
		Onboarding: httpH.NewOnboardingHandler(svcs.Onboarding, svcs.Dashboard),
		Realtime:   httpH.NewRealtimeHandler(log, hub, metrics),
		Tasks:      httpH.NewEntityHandler(svcs.Planner.Tasks),
		Goals:      httpH.NewEntityHandler(svcs.Planner.Goals),
		Habits:     httpH.NewEntityHandler(svcs.Planner.Habits),
		Journals:   httpH.NewEntityHandler(svcs.Planner.Journals),
		Routines:   httpH.NewEntityHandler(svcs.Planner.Routines),
	}
}

func wireServer(log *logger.Logger, cfg Config, h Handlers, mw Middleware, metrics *observability.Metrics) *http.Server {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.NewServer(http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		Metrics:           metrics,
		MetricsEnabled:    cfg.MetricsEnabled,
		AuthHandler:       h.Auth,
		AuthMiddleware:    mw.Auth,
		UserHandler:       h.User,
		AIHandler:         h.AI,
		OnboardingHandler: h.Onboarding,
		RealtimeHandler:   h.Realtime,
		TaskHandler:       h.Tasks,
		GoalHandler:       h.Goals,
		HabitHandler:      h.Habits,
		JournalHandler:    h.Journals,
		RoutineHandler:    h.Routines,
		HealthHandler:     h.Health,
	})
}
