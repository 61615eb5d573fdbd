package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestHealthCheckReportsDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		ping   Pinger
		status int
	}{
		{name: "no_db", ping: nil, status: http.StatusOK},
		{name: "db_up", ping: pingerFunc(func(context.Context) error { return nil }), status: http.StatusOK},
		{name: "db_down", ping: pingerFunc(func(context.Context) error { return errors.New("refused") }), status: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/healthcheck", NewHealthHandler(tc.ping).HealthCheck)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
			if rec.Code != tc.status {
				t.Fatalf("status=%d want %d", rec.Code, tc.status)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		target string
		want   int
	}{
		{target: "/h", want: 100},
		{target: "/h?limit=25", want: 25},
		{target: "/h?limit=lots", want: 100},
		{target: "/h?limit=-3", want: -3},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, tc.target, nil)
		if got := queryInt(c, "limit", 100); got != tc.want {
			t.Fatalf("%s: queryInt=%d want %d", tc.target, got, tc.want)
		}
	}
}

func TestPathIDRejectsGarbage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	if _, ok := pathID(c); ok {
		t.Fatalf("expected failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}
