package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

func userMsg(s string) []llm.Message { return []llm.Message{{Role: llm.RoleUser, Content: s}} }

func TestAIManagerSkipsDrainedProvider(t *testing.T) {
	drained := okProvider("drained", "never")
	drained.remaining = 0
	backup := okProvider("backup", "hello")
	rec := &memoryRecorder{}
	m := NewAIManager(logger.Nop(), []llm.Provider{drained, backup}, rec, AIManagerOptions{})

	res, err := m.Chat(context.Background(), ChatRequest{UserID: uuid.New(), Messages: userMsg("hi")})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Provider != "backup" || res.Content != "hello" {
		t.Fatalf("unexpected result %+v", res)
	}
	if drained.callCount() != 0 {
		t.Fatalf("drained provider was called")
	}
	if len(rec.entries) != 1 || rec.entries[0].Action != ailog.ActionChat || rec.entries[0].EntityType != ailog.EntityConversation {
		t.Fatalf("usage log entries=%+v", rec.entries)
	}
}

func TestAIManagerAllFail(t *testing.T) {
	a := &fakeProvider{name: "a", available: true, remaining: 5, err: &llm.ProviderError{Provider: "a", StatusCode: 500, Message: "boom"}}
	b := &fakeProvider{name: "b", available: true, usageErr: errors.New("usage down")}
	rec := &memoryRecorder{}
	m := NewAIManager(logger.Nop(), []llm.Provider{a, b}, rec, AIManagerOptions{})

	res, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi")})
	if res != nil {
		t.Fatalf("partial result returned: %+v", res)
	}
	if !errors.Is(err, ErrProvidersExhausted) {
		t.Fatalf("err=%v want ErrProvidersExhausted", err)
	}
	var pe *ProviderExhaustedError
	if !errors.As(err, &pe) || len(pe.Failures) != 2 {
		t.Fatalf("expected two failures, got %v", err)
	}
	if pe.Failures[0].Provider != "a" || pe.Failures[0].Skipped || !pe.Failures[1].Skipped {
		t.Fatalf("failure detail %+v", pe.Failures)
	}
	var provErr *llm.ProviderError
	if !errors.As(err, &provErr) || provErr.StatusCode != 500 {
		t.Fatalf("provider error not reachable through aggregate: %v", err)
	}
	if len(rec.entries) != 0 {
		t.Fatalf("usage logged on failure")
	}
}

func TestAIManagerCancelledContextIsNotExhaustion(t *testing.T) {
	p := okProvider("a", "never")
	m := NewAIManager(logger.Nop(), []llm.Provider{p}, nil, AIManagerOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Chat(ctx, ChatRequest{Messages: userMsg("hi")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	if errors.Is(err, ErrProvidersExhausted) {
		t.Fatalf("cancellation reported as provider exhaustion")
	}
	if p.callCount() != 0 {
		t.Fatalf("provider called after cancellation")
	}
}

func TestAIManagerNoProviders(t *testing.T) {
	off := okProvider("off", "x")
	off.available = false
	m := NewAIManager(logger.Nop(), []llm.Provider{off}, nil, AIManagerOptions{})
	if got := m.Providers(); len(got) != 0 {
		t.Fatalf("unavailable provider kept: %v", got)
	}
	if _, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi")}); !errors.Is(err, ErrProvidersExhausted) {
		t.Fatalf("err=%v want ErrProvidersExhausted", err)
	}
}

func TestAIManagerStartWraps(t *testing.T) {
	a, b, c := okProvider("a", "A"), okProvider("b", "B"), okProvider("c", "C")
	m := NewAIManager(logger.Nop(), []llm.Provider{a, b, c}, nil, AIManagerOptions{})
	cases := []struct {
		start int
		want  string
	}{
		{0, "a"}, {2, "c"}, {4, "b"}, {-1, "c"},
	}
	for _, tc := range cases {
		start := tc.start
		res, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi"), Start: &start})
		if err != nil || res.Provider != tc.want {
			t.Fatalf("start=%d got %v err=%v want %s", tc.start, res, err, tc.want)
		}
	}

	c.err = errors.New("down")
	start := 2
	res, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi"), Start: &start})
	if err != nil || res.Provider != "a" {
		t.Fatalf("wrap-around fallback got %v err=%v want a", res, err)
	}
}

func TestAIManagerRoundRobin(t *testing.T) {
	a, b := okProvider("a", "A"), okProvider("b", "B")
	m := NewAIManager(logger.Nop(), []llm.Provider{a, b}, nil, AIManagerOptions{Rotation: &RoundRobin{}})
	var got []string
	for i := 0; i < 3; i++ {
		res, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi")})
		if err != nil {
			t.Fatalf("Chat: %v", err)
		}
		got = append(got, res.Provider)
	}
	if got[0] != "a" || got[1] != "b" || got[2] != "a" {
		t.Fatalf("rotation %v", got)
	}
}

type slowProvider struct{ *fakeProvider }

func (s slowProvider) Chat(ctx context.Context, _ []llm.Message, _ llm.Options) (*llm.Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestAIManagerPerProviderTimeout(t *testing.T) {
	slow := slowProvider{okProvider("slow", "")}
	fast := okProvider("fast", "ok")
	m := NewAIManager(logger.Nop(), []llm.Provider{slow, fast}, nil, AIManagerOptions{Timeout: 20 * time.Millisecond})
	res, err := m.Chat(context.Background(), ChatRequest{Messages: userMsg("hi")})
	if err != nil || res.Provider != "fast" {
		t.Fatalf("got %v err=%v want fast", res, err)
	}
}
