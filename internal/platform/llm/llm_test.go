package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/httpx"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

func newServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request, body map[string]any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		handler(w, r, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIChatDecodesToolCalls(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path=%s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header=%q", got)
		}
		if body["tool_choice"] != "auto" {
			t.Errorf("tool_choice=%v", body["tool_choice"])
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Added it.","tool_calls":[{"function":{"name":"create_task","arguments":"{\"title\":\"Buy milk\"}"}}]}}],"usage":{"prompt_tokens":3,"completion_tokens":4,"total_tokens":7}}`)
	})
	p := NewOpenAI(logger.Nop(), Config{APIKey: "sk-test", BaseURL: srv.URL})
	res, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "buy milk"}}, Options{Functions: DefaultCatalog().Functions})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Content != "Added it." || len(res.Functions) != 1 {
		t.Fatalf("unexpected response: %+v", res)
	}
	if res.Functions[0].Arguments["title"] != "Buy milk" {
		t.Fatalf("arguments=%v", res.Functions[0].Arguments)
	}
	if res.Usage == nil || res.Usage.TotalTokens != 7 {
		t.Fatalf("usage=%+v", res.Usage)
	}
}

func TestProviderErrorCarriesStatus(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request, _ map[string]any) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":"slow down"}`)
	})
	p := NewOpenAI(logger.Nop(), Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, Options{})
	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T %v", err, err)
	}
	if pe.HTTPStatusCode() != http.StatusTooManyRequests || !httpx.IsRetryableError(err) {
		t.Fatalf("status=%d retryable=%v", pe.HTTPStatusCode(), httpx.IsRetryableError(err))
	}
	if pe.RetryAfter != 7*time.Second {
		t.Fatalf("retryAfter=%s", pe.RetryAfter)
	}
}

func TestGeminiChatMapsRolesAndFunctions(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") || r.URL.Query().Get("key") != "g-key" {
			t.Errorf("url=%s", r.URL.String())
		}
		contents, _ := body["contents"].([]any)
		if len(contents) != 2 {
			t.Errorf("contents=%v", body["contents"])
		} else if second, _ := contents[1].(map[string]any); second["role"] != "model" {
			t.Errorf("assistant role not mapped to model: %v", second)
		}
		if body["systemInstruction"] == nil {
			t.Errorf("system instruction missing")
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"Sure."},{"functionCall":{"name":"create_goal","args":{"title":"Run 5k"}}}]}}],"usageMetadata":{"promptTokenCount":1,"candidatesTokenCount":2,"totalTokenCount":3}}`)
	})
	p := NewGemini(logger.Nop(), Config{APIKey: "g-key", BaseURL: srv.URL})
	res, err := p.Chat(context.Background(), []Message{
		{Role: RoleSystem, Content: "be nice"},
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
	}, Options{Functions: DefaultCatalog().Functions})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Content != "Sure." || len(res.Functions) != 1 || res.Functions[0].Name != "create_goal" {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestHuggingFaceFlattensPrompt(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		if r.URL.Path != "/models/meta-llama/Llama-2-7b-chat-hf" {
			t.Errorf("path=%s", r.URL.Path)
		}
		want := "system: s\nuser: u\nassistant:"
		if body["inputs"] != want {
			t.Errorf("inputs=%q want %q", body["inputs"], want)
		}
		_, _ = io.WriteString(w, `[{"generated_text":" hello "}]`)
	})
	p := NewHuggingFace(logger.Nop(), Config{APIKey: "hf", BaseURL: srv.URL})
	res, err := p.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "s"}, {Role: RoleUser, Content: "u"}}, Options{})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Content != "hello" || len(res.Functions) != 0 {
		t.Fatalf("unexpected response: %+v", res)
	}
}

func TestAnthropicToolUse(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request, body map[string]any) {
		if r.Header.Get("x-api-key") != "a-key" || r.Header.Get("anthropic-version") == "" {
			t.Errorf("headers=%v", r.Header)
		}
		if body["system"] != "sys" {
			t.Errorf("system=%v", body["system"])
		}
		_, _ = io.WriteString(w, `{"content":[{"type":"text","text":"Done"},{"type":"tool_use","name":"create_habit","input":{"title":"Stretch","frequency":"daily"}}],"usage":{"input_tokens":5,"output_tokens":6}}`)
	})
	p := NewAnthropic(logger.Nop(), Config{APIKey: "a-key", BaseURL: srv.URL})
	res, err := p.Chat(context.Background(), []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "u"}}, Options{Functions: DefaultCatalog().Functions})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if len(res.Functions) != 1 || res.Functions[0].Arguments["frequency"] != "daily" {
		t.Fatalf("functions=%+v", res.Functions)
	}
	if res.Usage.TotalTokens != 11 {
		t.Fatalf("usage=%+v", res.Usage)
	}
}

func TestConvertToAnthropicMergesSameRole(t *testing.T) {
	msgs, system := convertToAnthropic([]Message{
		{Role: RoleSystem, Content: "a"},
		{Role: RoleUser, Content: "one"},
		{Role: RoleUser, Content: "two"},
		{Role: RoleAssistant, Content: "three"},
	})
	if system != "a" || len(msgs) != 2 || msgs[0].Content != "one\n\ntwo" {
		t.Fatalf("msgs=%+v system=%q", msgs, system)
	}
}

func TestUnavailableWithoutKey(t *testing.T) {
	p := NewOpenAI(logger.Nop(), Config{})
	if p.IsAvailable() {
		t.Fatalf("provider without key should be unavailable")
	}
	if _, err := p.Chat(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("expected error from unavailable provider")
	}
}

func TestQuota(t *testing.T) {
	q := NewQuota(2, time.Hour)
	if u := q.Usage(); u.Limit != 2 || u.Remaining != 2 || u.Used != 0 {
		t.Fatalf("fresh usage=%+v", u)
	}
	if err := q.Take(); err != nil {
		t.Fatalf("first take: %v", err)
	}
	if err := q.Take(); err != nil {
		t.Fatalf("second take: %v", err)
	}
	if err := q.Take(); !errors.Is(err, ErrQuotaExhausted) {
		t.Fatalf("third take err=%v", err)
	}
	if u := q.Usage(); u.Remaining != 0 || u.Used != 2 {
		t.Fatalf("drained usage=%+v", u)
	}
	if err := NewQuota(0, 0).Take(); err != nil {
		t.Fatalf("unmetered quota should never refuse: %v", err)
	}
}

func TestDefaultCatalog(t *testing.T) {
	c := DefaultCatalog()
	if !strings.HasPrefix(c.SystemPrompt, "You are LifePilot") {
		t.Fatalf("system prompt=%q", c.SystemPrompt[:20])
	}
	want := []string{"create_task", "create_goal", "create_habit", "create_routine", "create_journal_entry", "list_tasks", "update_task_status"}
	if len(c.Functions) != len(want) {
		t.Fatalf("functions=%d want %d", len(c.Functions), len(want))
	}
	for i, name := range want {
		if c.Functions[i].Name != name {
			t.Fatalf("function %d=%s want %s", i, c.Functions[i].Name, name)
		}
	}
	if _, err := json.Marshal(c.Functions[len(c.Functions)-1].Parameters); err != nil {
		t.Fatalf("parameters not JSON-encodable: %v", err)
	}
}

func TestDecodeArguments(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		key  string
		want any
	}{
		{name: "object", raw: `{"a":1}`, key: "a", want: float64(1)},
		{name: "string", raw: `"{\"a\":\"b\"}"`, key: "a", want: "b"},
		{name: "garbage", raw: `"not json"`, key: "_raw", want: "not json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := decodeArguments(json.RawMessage(tc.raw))
			if got[tc.key] != tc.want {
				t.Fatalf("decodeArguments(%s)=%v", tc.raw, got)
			}
		})
	}
}
