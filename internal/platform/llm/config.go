package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/httpx"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// Config is shared by every adapter. Empty fields fall back to the adapter's defaults.
type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	QuotaLimit  int
	QuotaWindow time.Duration
	HTTPClient  *http.Client
}

type base struct {
	name    string
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
	quota   *Quota
	log     *logger.Logger
}

func newBase(log *logger.Logger, name string, cfg Config, defModel, defURL string, defLimit int, defWindow time.Duration) base {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defURL
	}
	limit := cfg.QuotaLimit
	if limit == 0 {
		limit = defLimit
	}
	window := cfg.QuotaWindow
	if window <= 0 {
		window = defWindow
	}
	client := cfg.HTTPClient
	if client == nil {
		// No client timeout; the caller's context bounds each call.
		client = httpx.NewClient(0)
	}
	if log == nil {
		log = logger.Nop()
	}
	return base{
		name:    name,
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   model,
		baseURL: baseURL,
		http:    client,
		quota:   NewQuota(limit, window),
		log:     log.With("provider", name),
	}
}

func (b *base) Name() string { return b.name }

func (b *base) IsAvailable() bool { return b.apiKey != "" && b.http != nil }

func (b *base) Usage(_ context.Context) (Usage, error) {
	return b.quota.Usage(), nil
}

// begin checks availability and consumes one quota unit.
func (b *base) begin() error {
	if !b.IsAvailable() {
		return &ProviderError{Provider: b.name, Message: "client not initialized"}
	}
	if err := b.quota.Take(); err != nil {
		return &ProviderError{Provider: b.name, StatusCode: http.StatusTooManyRequests, Message: "quota exhausted", Err: err}
	}
	return nil
}
