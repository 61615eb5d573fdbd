package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const (
	anthropicName         = "Anthropic"
	anthropicDefaultModel = "claude-3-5-haiku-latest"
	anthropicDefaultURL   = "https://api.anthropic.com"
	anthropicAPIVersion   = "2023-06-01"
)

type Anthropic struct {
	base
}

func NewAnthropic(log *logger.Logger, cfg Config) *Anthropic {
	return &Anthropic{base: newBase(log, anthropicName, cfg, anthropicDefaultModel, anthropicDefaultURL, 1000, 24*time.Hour)}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	Tools       []anthropicTool    `json:"tools,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type  string          `json:"type"`
		Text  string          `json:"text,omitempty"`
		Name  string          `json:"name,omitempty"`
		Input json.RawMessage `json:"input,omitempty"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// convertToAnthropic splits out the system prompt and merges consecutive turns
// of the same role, which the messages API rejects.
func convertToAnthropic(messages []Message) ([]anthropicMessage, string) {
	var (
		out    []anthropicMessage
		system []string
	)
	for _, m := range normalizeMessages(messages) {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "assistant"
		}
		if n := len(out); n > 0 && out[n-1].Role == role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, anthropicMessage{Role: role, Content: m.Content})
	}
	return out, strings.Join(system, "\n\n")
}

func (c *Anthropic) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	msgs, system := convertToAnthropic(messages)
	req := anthropicRequest{
		Model:       c.model,
		System:      system,
		Messages:    msgs,
		MaxTokens:   opts.maxTokens(),
		Temperature: opts.temperature(),
	}
	for _, f := range opts.Functions {
		req.Tools = append(req.Tools, anthropicTool{Name: f.Name, Description: f.Description, InputSchema: f.Parameters})
	}

	headers := map[string]string{
		"x-api-key":         c.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}
	var out anthropicResponse
	if err := postJSON(ctx, c.http, c.name, c.baseURL+"/v1/messages", headers, req, &out); err != nil {
		return nil, err
	}
	res := &Response{}
	var text strings.Builder
	for _, block := range out.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			res.Functions = append(res.Functions, FunctionCall{Name: block.Name, Arguments: decodeArguments(block.Input)})
		}
	}
	res.Content = text.String()
	res.Usage = &TokenUsage{
		PromptTokens:     out.Usage.InputTokens,
		CompletionTokens: out.Usage.OutputTokens,
		TotalTokens:      out.Usage.InputTokens + out.Usage.OutputTokens,
	}
	return res, nil
}
