package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
	"github.com/yungbote/lifepilot-backend/internal/realtime/bus"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

type Services struct {
	Emitter     services.Emitter
	Recorder    services.AILogRecorder
	Auth        services.AuthService
	User        services.UserService
	AIManager   services.AIManager
	Executor    services.FunctionExecutor
	Chat        services.ChatService
	Suggestions services.SuggestionService
	History     services.HistoryService
	Planner     *services.PlannerService
	Onboarding  services.OnboardingService
	Dashboard   services.DashboardService
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	repos Repos,
	providers []llm.Provider,
	hub *realtime.Hub,
	rtBus bus.Bus,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	var emitter services.Emitter = &services.HubEmitter{Hub: hub}
	if rtBus != nil {
		emitter = &services.RedisEmitter{Bus: rtBus, Log: log}
	}
	recorder := services.NewAILogRecorder(log, repos.AILog)
	catalog := llm.DefaultCatalog()

	manager := services.NewAIManager(log, providers, recorder, services.AIManagerOptions{
		Timeout:  cfg.AIProviderTimeout,
		Rotation: services.RotationFromString(cfg.AIRotation),
		Metrics:  metrics,
	})
	executor := services.NewFunctionExecutor(log, repos.Planner, recorder, emitter)

	return Services{
		Emitter:     emitter,
		Recorder:    recorder,
		Auth:        services.NewAuthService(db, log, repos.User, repos.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		User:        services.NewUserService(db, log, repos.User),
		AIManager:   manager,
		Executor:    executor,
		Chat:        services.NewChatService(log, repos.User, manager, executor, recorder, catalog),
		Suggestions: services.NewSuggestionService(log, repos.Planner, recorder, emitter),
		History:     services.NewHistoryService(repos.AILog),
		Planner:     services.NewPlannerService(db, log, repos.Planner, recorder, emitter),
		Onboarding:  services.NewOnboardingService(db, log, repos.User, repos.Planner, manager, recorder, catalog),
		Dashboard:   services.NewDashboardService(repos.Planner),
	}
}
