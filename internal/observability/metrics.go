package observability

import (
	"io"
	"net/http"
	"time"
)

// Metrics is a small Prometheus text-format registry. A nil *Metrics is valid
// and records nothing, so callers never need to check whether metrics are on.
type Metrics struct {
	apiRequests   *CounterVec
	apiLatency    *HistogramVec
	apiInflight   *Gauge
	aiRequests    *CounterVec
	aiLatency     *HistogramVec
	suggestions   *CounterVec
	notifications *CounterVec
	realtime      *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("lp_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"lp_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("lp_api_inflight_requests", "In-flight API requests."),
		aiRequests:  NewCounterVec("lp_ai_requests_total", "AI provider attempts by provider/outcome.", []string{"provider", "outcome"}),
		aiLatency: NewHistogramVec(
			"lp_ai_request_duration_seconds",
			"AI provider call latency in seconds.",
			[]string{"provider"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		),
		suggestions:   NewCounterVec("lp_suggestions_resolved_total", "Resolved AI suggestions by kind/decision.", []string{"kind", "decision"}),
		notifications: NewCounterVec("lp_notifications_sent_total", "Notifications published by type/priority.", []string{"type", "priority"}),
		realtime:      NewGaugeVec("lp_realtime_clients", "Connected realtime clients by transport.", []string{"transport"}),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []collector{m.apiRequests, m.apiLatency, m.apiInflight, m.aiRequests, m.aiLatency, m.suggestions, m.notifications, m.realtime} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Add(1)
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Add(-1)
	}
}

// ObserveAIRequest records one provider attempt. outcome is ok, error or skipped.
func (m *Metrics) ObserveAIRequest(provider, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aiRequests.Inc(provider, outcome)
	if outcome != "skipped" {
		m.aiLatency.Observe(dur.Seconds(), provider)
	}
}

func (m *Metrics) IncSuggestionResolved(kind string, approved bool) {
	if m == nil {
		return
	}
	decision := "rejected"
	if approved {
		decision = "approved"
	}
	m.suggestions.Inc(kind, decision)
}

func (m *Metrics) IncNotification(kind, priority string) {
	if m != nil {
		m.notifications.Inc(kind, priority)
	}
}

func (m *Metrics) AddRealtimeClients(transport string, delta float64) {
	if m != nil {
		m.realtime.Add(delta, transport)
	}
}
