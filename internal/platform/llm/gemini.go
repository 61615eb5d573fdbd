package llm

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

const (
	geminiName         = "Google Gemini"
	geminiDefaultModel = "gemini-1.5-flash"
	geminiDefaultURL   = "https://generativelanguage.googleapis.com"
)

type Gemini struct {
	base
}

func NewGemini(log *logger.Logger, cfg Config) *Gemini {
	return &Gemini{base: newBase(log, geminiName, cfg, geminiDefaultModel, geminiDefaultURL, 60, time.Minute)}
}

type geminiPart struct {
	Text         string              `json:"text,omitempty"`
	FunctionCall *geminiFunctionCall `json:"functionCall,omitempty"`
}

type geminiFunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiTool struct {
	FunctionDeclarations []FunctionDef `json:"functionDeclarations"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Tools             []geminiTool    `json:"tools,omitempty"`
	GenerationConfig  struct {
		Temperature     float64 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata *struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// convertToGemini maps history onto user/model turns and lifts system messages
// into a single system instruction.
func convertToGemini(messages []Message) ([]geminiContent, *geminiContent) {
	var (
		contents []geminiContent
		system   []string
	)
	for _, m := range normalizeMessages(messages) {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			contents = append(contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if len(system) == 0 {
		return contents, nil
	}
	return contents, &geminiContent{Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}}}
}

func (c *Gemini) Chat(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	if err := c.begin(); err != nil {
		return nil, err
	}
	contents, system := convertToGemini(messages)
	req := geminiRequest{Contents: contents, SystemInstruction: system}
	req.GenerationConfig.Temperature = opts.temperature()
	req.GenerationConfig.MaxOutputTokens = opts.maxTokens()
	if len(opts.Functions) > 0 {
		req.Tools = []geminiTool{{FunctionDeclarations: opts.Functions}}
	}

	endpoint := c.baseURL + "/v1beta/models/" + url.PathEscape(c.model) + ":generateContent?key=" + url.QueryEscape(c.apiKey)
	var out geminiResponse
	if err := postJSON(ctx, c.http, c.name, endpoint, nil, req, &out); err != nil {
		return nil, err
	}
	if len(out.Candidates) == 0 {
		return nil, &ProviderError{Provider: c.name, Message: "empty candidates"}
	}
	res := &Response{}
	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		if p.FunctionCall != nil {
			args := p.FunctionCall.Args
			if args == nil {
				args = map[string]any{}
			}
			res.Functions = append(res.Functions, FunctionCall{Name: p.FunctionCall.Name, Arguments: args})
			continue
		}
		text.WriteString(p.Text)
	}
	res.Content = text.String()
	if out.UsageMetadata != nil {
		res.Usage = &TokenUsage{
			PromptTokens:     out.UsageMetadata.PromptTokenCount,
			CompletionTokens: out.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      out.UsageMetadata.TotalTokenCount,
		}
	}
	return res, nil
}
