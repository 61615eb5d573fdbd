package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/yungbote/lifepilot-backend/internal/app"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// runContext is handed to every subcommand's Run.
type runContext struct {
	Log *logger.Logger
	Cfg app.Config
}

type ServeCmd struct {
	Port string `help:"Listen port, overrides PORT." env:"PORT"`
}

func (s *ServeCmd) Run(rc *runContext) error {
	cfg := rc.Cfg
	if s.Port != "" {
		cfg.Port = s.Port
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, rc.Log, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.Start(); err != nil {
		return err
	}
	return application.Run(ctx)
}

type MigrateCmd struct{}

func (m *MigrateCmd) Run(rc *runContext) error {
	svc, err := app.Open(rc.Log, rc.Cfg)
	if err != nil {
		return err
	}
	defer svc.Close()
	rc.Log.Info("Migrations applied", "driver", svc.Driver())
	return nil
}

var CLI struct {
	LogMode string `help:"Log mode (development|production)." env:"LOG_MODE" default:"development"`

	Serve   ServeCmd   `cmd:"" help:"Run the HTTP API." default:"1"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("lifepilot"),
		kong.Description("LifePilot productivity backend"),
		kong.UsageOnError(),
	)

	log, err := logger.New(CLI.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := kctx.Run(&runContext{Log: log, Cfg: app.LoadConfig(log)}); err != nil {
		log.Error("command failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}
