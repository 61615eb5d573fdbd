package llm

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const (
	huggingFaceName         = "Hugging Face"
	huggingFaceDefaultModel = "meta-llama/Llama-2-7b-chat-hf"
	huggingFaceDefaultURL   = "https://api-inference.huggingface.co"
)

// HuggingFace talks to the text-generation inference API. It has no function
// calling; Options.Functions is ignored.
type HuggingFace struct {
	base
}

func NewHuggingFace(log *logger.Logger, cfg Config) *HuggingFace {
	return &HuggingFace{base: newBase(log, huggingFaceName, cfg, huggingFaceDefaultModel, huggingFaceDefaultURL, 1000, 24*time.Hour)}
}

type huggingFaceRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		MaxNewTokens   int     `json:"max_new_tokens"`
		Temperature    float64 `json:"temperature"`
		ReturnFullText bool    `json:"return_full_text"`
	} `json:"parameters"`
}

type huggingFaceResponse []struct {
	GeneratedText string `json:"generated_text"`
}

// flattenPrompt renders the conversation as "role: content" lines ending with
// an open assistant turn.
func flattenPrompt(messages []Message) string {
	var b strings.Builder
	for _, m := range normalizeMessages(messages) {
		b.WriteString(string(m.Role))
		b.WriteString(": ")
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("assistant:")
	return b.String()
}

func (c *HuggingFace) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	req := huggingFaceRequest{Inputs: flattenPrompt(messages)}
	req.Parameters.MaxNewTokens = opts.maxTokens()
	req.Parameters.Temperature = opts.temperature()

	endpoint := c.baseURL + "/models/" + strings.Join(escapeSegments(c.model), "/")
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	var out huggingFaceResponse
	if err := postJSON(ctx, c.http, c.name, endpoint, headers, req, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "empty generation"}
	}
	return &Response{Content: strings.TrimSpace(out[0].GeneratedText)}, nil
}

func escapeSegments(model string) []string {
	parts := strings.Split(model, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return parts
}
