package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/http/response"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/ctxutil"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

type stubAuth struct {
	valid  string
	userID uuid.UUID
}

func (s stubAuth) RegisterUser(context.Context, string, string, string) (*types.User, error) {
	return nil, errors.New("not implemented")
}
func (s stubAuth) LoginUser(context.Context, string, string) (*services.AuthTokens, error) {
	return nil, errors.New("not implemented")
}
func (s stubAuth) RefreshUser(context.Context, string) (*services.AuthTokens, error) {
	return nil, errors.New("not implemented")
}
func (s stubAuth) LogoutUser(context.Context) error { return nil }

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if token != s.valid {
		return nil, apperrors.ErrUnauthorized
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID, SessionID: uuid.New()}), nil
}

func newAuthRouter(t *testing.T, auth services.AuthService) (*gin.Engine, *uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	seen := new(uuid.UUID)
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(logger.Nop(), auth).RequireAuth(), func(c *gin.Context) {
		*seen = ctxutil.UserID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r, seen
}

func TestRequireAuth(t *testing.T) {
	uid := uuid.New()
	r, seen := newAuthRouter(t, stubAuth{valid: "good", userID: uid})

	cases := []struct {
		name   string
		target string
		header string
		status int
	}{
		{name: "missing", target: "/me", status: http.StatusUnauthorized},
		{name: "bad_token", target: "/me", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "header", target: "/me", header: "Bearer good", status: http.StatusNoContent},
		{name: "query", target: "/me?token=good", status: http.StatusNoContent},
		{name: "lowercase_scheme", target: "/me", header: "bearer good", status: http.StatusNoContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			*seen = uuid.Nil
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusNoContent && *seen != uid {
				t.Fatalf("handler saw user %s want %s", *seen, uid)
			}
		})
	}
}

func TestRequireAuthRejectsAnonymousContext(t *testing.T) {
	r, _ := newAuthRouter(t, stubAuth{valid: "good", userID: uuid.Nil})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	var td *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		td = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if td == nil || td.RequestID != "req-1" || td.TraceID == "" {
		t.Fatalf("trace data %+v", td)
	}
	if rec.Header().Get("X-Request-Id") != "req-1" || rec.Header().Get("X-Trace-Id") != td.TraceID {
		t.Fatalf("headers %v", rec.Header())
	}
}

func TestAttachTraceContextDropsUnsafeRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, bad := range []string{"has space", strings.Repeat("a", 200)} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Request-Id", bad)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		got := rec.Header().Get("X-Request-Id")
		if got == bad || got == "" {
			t.Fatalf("request id %q should have been replaced, got %q", bad, got)
		}
	}
}

func TestErrorEnvelopeCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/me", NewAuthMiddleware(logger.Nop(), stubAuth{valid: "good"}).RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", rec.Code)
	}
	var env response.ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Code != "unauthorized" || env.Error.RequestID != "req-42" {
		t.Fatalf("envelope %+v", env)
	}
}

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	r := gin.New()
	r.Use(AttachTraceContext(), RequestLogger(log))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/tasks/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, path := range []string{"/healthcheck", "/api/tasks/123"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("logged %d entries", len(entries))
	}
	if entries[0].Level != zapcore.DebugLevel {
		t.Fatalf("healthcheck level=%s", entries[0].Level)
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("404 level=%s", entries[1].Level)
	}
	if route := entries[1].ContextMap()["route"]; route != "/api/tasks/:id" {
		t.Fatalf("route=%v", route)
	}
}
