package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/data/db"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

func sqliteConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Port:            "0",
		JWTSecretKey:    "test-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		DB:              db.Config{Driver: db.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "app.db")},
		Providers:       []ProviderConfig{{Name: "openai", Key: "test-key"}, {Name: "gemini", Key: "test-key"}},
		AIRotation:      "first",
		MetricsEnabled:  true,
	}
}

func TestNewWiresRoutes(t *testing.T) {
	a, err := New(context.Background(), logger.Nop(), sqliteConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	cases := []struct {
		method string
		path   string
		status int
	}{
		{method: http.MethodGet, path: "/healthcheck", status: http.StatusOK},
		{method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{method: http.MethodGet, path: "/api/tasks", status: http.StatusUnauthorized},
		{method: http.MethodGet, path: "/api/realtime/sse", status: http.StatusUnauthorized},
		{method: http.MethodPost, path: "/api/login", status: http.StatusBadRequest},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		a.Server.Engine.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s status=%d want %d", tc.method, tc.path, rec.Code, tc.status)
		}
	}
	if got := a.Services.AIManager.Providers(); len(got) != 2 {
		t.Fatalf("providers %v", got)
	}
}

func TestNewDropsKeylessProviders(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Providers = []ProviderConfig{{Name: "openai"}, {Name: "anthropic", Key: "test-key"}}
	a, err := New(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()
	if got := a.Services.AIManager.Providers(); len(got) != 1 || got[0] != "Anthropic" {
		t.Fatalf("providers %v", got)
	}
}

func TestOpenMigratesSQLite(t *testing.T) {
	svc, err := Open(logger.Nop(), sqliteConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer svc.Close()
	if !svc.DB().Migrator().HasTable("task") {
		t.Fatalf("task table missing")
	}
}
