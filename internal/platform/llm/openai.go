package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const (
	openAIName         = "OpenAI"
	openAIDefaultModel = "gpt-3.5-turbo"
	openAIDefaultURL   = "https://api.openai.com"
)

type OpenAI struct {
	base
}

func NewOpenAI(log *logger.Logger, cfg Config) *OpenAI {
	return &OpenAI{base: newBase(log, openAIName, cfg, openAIDefaultModel, openAIDefaultURL, 5000, 24*time.Hour)}
}

type openAIRequest struct {
	Model       string       `json:"model"`
	Messages    []Message    `json:"messages"`
	Temperature float64      `json:"temperature"`
	MaxTokens   int          `json:"max_tokens"`
	Tools       []openAITool `json:"tools,omitempty"`
	ToolChoice  string       `json:"tool_choice,omitempty"`
}

type openAITool struct {
	Type     string      `json:"type"`
	Function FunctionDef `json:"function"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content   *string `json:"content"`
			ToolCalls []struct {
				Function struct {
					Name      string          `json:"name"`
					Arguments json.RawMessage `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

func (c *OpenAI) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	req := openAIRequest{
		Model:       c.model,
		Messages:    normalizeMessages(messages),
		Temperature: opts.temperature(),
		MaxTokens:   opts.maxTokens(),
	}
	for _, f := range opts.Functions {
		req.Tools = append(req.Tools, openAITool{Type: "function", Function: f})
	}
	if len(req.Tools) > 0 {
		req.ToolChoice = "auto"
	}

	var out openAIResponse
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	if err := postJSON(ctx, c.http, c.name, c.baseURL+"/v1/chat/completions", headers, req, &out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "empty choices"}
	}
	msg := out.Choices[0].Message
	res := &Response{}
	if msg.Content != nil {
		res.Content = *msg.Content
	}
	for _, tc := range msg.ToolCalls {
		res.Functions = append(res.Functions, FunctionCall{Name: tc.Function.Name, Arguments: decodeArguments(tc.Function.Arguments)})
	}
	if out.Usage != nil {
		res.Usage = &TokenUsage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		}
	}
	c.log.Debug("chat completed", "model", c.model, "functions", len(res.Functions))
	return res, nil
}

// normalizeMessages fills blank roles with user.
func normalizeMessages(messages []Message) []Message {
	out := make([]Message, 0, len(messages))
	for _, m := range messages {
		if m.Role == "" {
			m.Role = RoleUser
		}
		out = append(out, m)
	}
	return out
}
