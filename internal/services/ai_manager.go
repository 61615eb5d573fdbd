package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/observability"
	"github.com/yungbote/lifepilot-backend/internal/platform/httpx"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const DefaultProviderTimeout = 30 * time.Second

var ErrProvidersExhausted = errors.New("all AI providers failed")

// ProviderFailure explains one passed-over provider. Transient marks timeouts,
// 429s and 5xx: the provider may well succeed on the next request.
type ProviderFailure struct {
	Provider  string
	Skipped   bool
	Transient bool
	Err       error
}

// ProviderExhaustedError lists why each candidate provider was passed over.
// errors.Is(err, ErrProvidersExhausted) holds for it.
type ProviderExhaustedError struct {
	Failures []ProviderFailure
}

func (e *ProviderExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return "no AI providers available"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		verb := "failed"
		if f.Skipped {
			verb = "skipped"
		}
		parts = append(parts, fmt.Sprintf("%s %s: %v", f.Provider, verb, f.Err))
	}
	return ErrProvidersExhausted.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ProviderExhaustedError) Is(target error) bool { return target == ErrProvidersExhausted }

func (e *ProviderExhaustedError) Unwrap() []error {
	out := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Err != nil {
			out = append(out, f.Err)
		}
	}
	return out
}

// RotationStrategy picks the first provider to try out of n.
type RotationStrategy interface {
	Next(n int) int
}

// FirstProvider always starts from the highest-priority provider.
type FirstProvider struct{}

func (FirstProvider) Next(int) int { return 0 }

// RoundRobin advances the starting provider on every call.
type RoundRobin struct {
	counter atomic.Uint64
}

func (r *RoundRobin) Next(n int) int {
	if n <= 0 {
		return 0
	}
	return int((r.counter.Add(1) - 1) % uint64(n))
}

func RotationFromString(s string) RotationStrategy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "round_robin", "roundrobin", "rr":
		return &RoundRobin{}
	default:
		return FirstProvider{}
	}
}

type AIManagerOptions struct {
	Timeout  time.Duration
	Rotation RotationStrategy
	Metrics  *observability.Metrics
}

type ChatRequest struct {
	UserID   uuid.UUID
	Messages []llm.Message
	Options  llm.Options
	// Start overrides the rotation strategy when set. It wraps modulo the provider count.
	Start *int
}

type ChatResult struct {
	Content   string             `json:"content"`
	Functions []llm.FunctionCall `json:"functions"`
	Usage     *llm.TokenUsage    `json:"usage,omitempty"`
	Provider  string             `json:"provider"`
}

type AIManager interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResult, error)
	Providers() []string
}

type aiManager struct {
	log       *logger.Logger
	providers []llm.Provider
	recorder  AILogRecorder
	timeout   time.Duration
	rotation  RotationStrategy
	metrics   *observability.Metrics
}

// NewAIManager keeps the providers that are available right now, in the given
// priority order.
func NewAIManager(log *logger.Logger, providers []llm.Provider, recorder AILogRecorder, opts AIManagerOptions) AIManager {
	m := &aiManager{
		log:      log.With("service", "AIManager"),
		recorder: recorder,
		timeout:  opts.Timeout,
		rotation: opts.Rotation,
		metrics:  opts.Metrics,
	}
	if m.timeout <= 0 {
		m.timeout = DefaultProviderTimeout
	}
	if m.rotation == nil {
		m.rotation = FirstProvider{}
	}
	for _, p := range providers {
		if p != nil && p.IsAvailable() {
			m.providers = append(m.providers, p)
		}
	}
	names := m.Providers()
	m.log.Info("ai providers configured", "providers", names)
	return m
}

func (m *aiManager) Providers() []string {
	out := make([]string, 0, len(m.providers))
	for _, p := range m.providers {
		out = append(out, p.Name())
	}
	return out
}

func (m *aiManager) Chat(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	n := len(m.providers)
	if n == 0 {
		return nil, &ProviderExhaustedError{}
	}
	var start int
	if req.Start != nil {
		start = ((*req.Start % n) + n) % n
	} else {
		start = m.rotation.Next(n) % n
	}

	exhausted := &ProviderExhaustedError{}
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := m.providers[(start+i)%n]

		usage, err := p.Usage(ctx)
		if err != nil {
			m.log.Warn("provider usage check failed", "provider", p.Name(), "error", err)
			exhausted.Failures = append(exhausted.Failures, ProviderFailure{Provider: p.Name(), Skipped: true, Err: err})
			m.metrics.ObserveAIRequest(p.Name(), "skipped", 0)
			continue
		}
		if usage.Remaining <= 0 {
			exhausted.Failures = append(exhausted.Failures, ProviderFailure{Provider: p.Name(), Skipped: true, Err: llm.ErrQuotaExhausted})
			m.metrics.ObserveAIRequest(p.Name(), "skipped", 0)
			continue
		}

		started := time.Now()
		resp, err := m.callProvider(ctx, p, req)
		if err != nil {
			transient := httpx.IsRetryableError(err)
			fields := []interface{}{"provider", p.Name(), "transient", transient, "error", err}
			var perr *llm.ProviderError
			if errors.As(err, &perr) && perr.RetryAfter > 0 {
				fields = append(fields, "retry_after", perr.RetryAfter.String())
			}
			m.log.Warn("provider failed; trying next", fields...)
			exhausted.Failures = append(exhausted.Failures, ProviderFailure{Provider: p.Name(), Transient: transient, Err: err})
			m.metrics.ObserveAIRequest(p.Name(), "error", time.Since(started))
			continue
		}
		m.metrics.ObserveAIRequest(p.Name(), "ok", time.Since(started))

		m.recordUsage(ctx, req, p.Name(), resp)
		return &ChatResult{
			Content:   resp.Content,
			Functions: resp.Functions,
			Usage:     resp.Usage,
			Provider:  p.Name(),
		}, nil
	}
	m.log.Error("all ai providers failed", "attempts", len(exhausted.Failures))
	return nil, exhausted
}

func (m *aiManager) callProvider(ctx context.Context, p llm.Provider, req ChatRequest) (*llm.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()
	resp, err := p.Chat(callCtx, req.Messages, req.Options)
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%s returned no response", p.Name())
	}
	return resp, nil
}

func (m *aiManager) recordUsage(ctx context.Context, req ChatRequest, provider string, resp *llm.Response) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(ctx, AILogEntry{
		UserID:     req.UserID,
		Action:     ailog.ActionChat,
		EntityType: ailog.EntityConversation,
		Details: map[string]any{
			"provider":     provider,
			"messageCount": len(req.Messages),
			"hasFunction":  len(resp.Functions) > 0,
			"usage":        resp.Usage,
		},
	})
}
