package app

import (
	"testing"

	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

func TestWireProvidersKeepsPriorityOrder(t *testing.T) {
	ps, err := wireProviders(logger.Nop(), []ProviderConfig{
		{Name: "gemini", Key: "k"},
		{Name: "openai"},
	})
	if err != nil {
		t.Fatalf("wireProviders: %v", err)
	}
	if len(ps) != 2 || ps[0].Name() != "Google Gemini" || ps[1].Name() != "OpenAI" {
		t.Fatalf("providers out of order")
	}
	if !ps[0].IsAvailable() || ps[1].IsAvailable() {
		t.Fatalf("availability should follow the API key")
	}
}

func TestWireProvidersRejectsUnknown(t *testing.T) {
	if _, err := wireProviders(logger.Nop(), []ProviderConfig{{Name: "skynet"}}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWireBusDisabledWithoutAddr(t *testing.T) {
	b, err := wireBus(logger.Nop(), Config{})
	if err != nil || b != nil {
		t.Fatalf("expected no bus, got %v %v", b, err)
	}
}
