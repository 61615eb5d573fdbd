package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/db"
	"github.com/yungbote/lifepilot-backend/internal/http"
	"github.com/yungbote/lifepilot-backend/internal/notify"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
	"github.com/yungbote/lifepilot-backend/internal/realtime/bus"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Repos    Repos
	Services Services
	Hub      *realtime.Hub
	Bus      bus.Bus
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Open connects to the database and migrates it. It is all the migrate
// command needs.
func Open(log *logger.Logger, cfg Config) (*db.Service, error) {
	svc, err := db.NewService(log, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	if err := db.EnsureIndexes(svc.DB()); err != nil {
		_ = svc.Close()
		return nil, err
	}
	return svc, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel)

	dbService, err := Open(log, cfg)
	if err != nil {
		_ = otelShutdown(ctx)
		return nil, err
	}
	theDB := dbService.DB()
	sqlDB, err := theDB.DB()
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, fmt.Errorf("database handle: %w", err)
	}

	metrics := observability.NewMetrics()
	hub := realtime.NewHub(log)
	rtBus, err := wireBus(log, cfg)
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	providers, err := wireProviders(log, cfg.Providers)
	if err != nil {
		_ = dbService.Close()
		_ = otelShutdown(ctx)
		return nil, err
	}
	serviceset := wireServices(theDB, log, cfg, reposet, providers, hub, rtBus, metrics)
	handlerset := wireHandlers(log, serviceset, hub, metrics, sqlDB)
	middleware := wireMiddleware(log, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       wireServer(log, cfg, handlerset, middleware, metrics),
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Hub:          hub,
		Bus:          rtBus,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches the background workers: the cross-instance realtime
// forwarder and the notification poller.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Bus != nil {
		// Relayed client frames go through the bus so every instance sees them.
		a.Hub.SetRelay(func(ctx context.Context, msg realtime.Message) {
			if err := a.Bus.Publish(ctx, msg); err != nil {
				a.Log.Warn("realtime relay publish failed", "event", string(msg.Event), "error", err)
			}
		})
		if err := a.Bus.StartForwarder(ctx, a.Hub.Broadcast); err != nil {
			return fmt.Errorf("start realtime forwarder: %w", err)
		}
		a.Log.Info("Realtime bus forwarder started")
	}

	if a.Cfg.NotifyEnabled {
		poller := &notify.Poller{
			Interval:  a.Cfg.NotifyInterval,
			Source:    &notify.DueTaskSource{DB: a.DB},
			Publisher: &notify.RealtimePublisher{Emitter: a.Services.Emitter},
			Log:       a.Log.With("worker", "NotificationPoller"),
			Metrics:   a.Metrics,
		}
		go poller.Run(ctx)
		a.Log.Info("Notification poller started", "interval", a.Cfg.NotifyInterval.String())
	}
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", addr)
		return a.Server.Run(addr)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Bus != nil {
		if err := a.Bus.Close(); err != nil {
			a.Log.Warn("close realtime bus", "error", err)
		}
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil {
			a.Log.Warn("close database", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
