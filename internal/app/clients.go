package app

import (
	"fmt"

	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime/bus"
)

// wireProviders builds every adapter in priority order. Adapters without a key
// stay in the list and report IsAvailable false.
func wireProviders(log *logger.Logger, cfgs []ProviderConfig) ([]llm.Provider, error) {
	out := make([]llm.Provider, 0, len(cfgs))
	for _, pc := range cfgs {
		var p llm.Provider
		switch pc.Name {
		case "openai":
			p = llm.NewOpenAI(log, pc.llmConfig())
		case "gemini":
			p = llm.NewGemini(log, pc.llmConfig())
		case "huggingface":
			p = llm.NewHuggingFace(log, pc.llmConfig())
		case "anthropic":
			p = llm.NewAnthropic(log, pc.llmConfig())
		default:
			return nil, fmt.Errorf("unknown AI provider %q", pc.Name)
		}
		log.Info("AI provider configured", "provider", pc.Name, "available", p.IsAvailable())
		out = append(out, p)
	}
	return out, nil
}

// wireBus returns nil when REDIS_ADDR is unset; realtime then stays in-process.
func wireBus(log *logger.Logger, cfg Config) (bus.Bus, error) {
	if cfg.RedisAddr == "" {
		return nil, nil
	}
	b, err := bus.NewRedisBus(log, bus.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Channel:  cfg.RedisChannel,
	})
	if err != nil {
		return nil, fmt.Errorf("init redis bus: %w", err)
	}
	return b, nil
}
