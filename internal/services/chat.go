package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
	"github.com/yungbote/lifepilot-backend/internal/platform/llm"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

type ChatInput struct {
	Messages []llm.Message `json:"messages"`
	Message  string        `json:"message"`
}

type ChatReply struct {
	Content   string           `json:"content"`
	Functions []FunctionResult `json:"functions"`
	Provider  string           `json:"provider"`
}

type ChatService interface {
	Chat(ctx context.Context, userID uuid.UUID, in ChatInput) (*ChatReply, error)
	Providers() []string
}

type chatService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	manager  AIManager
	executor FunctionExecutor
	recorder AILogRecorder
	catalog  *llm.Catalog
}

func NewChatService(log *logger.Logger, userRepo repos.UserRepo, manager AIManager, executor FunctionExecutor, recorder AILogRecorder, catalog *llm.Catalog) ChatService {
	if catalog == nil {
		catalog = llm.DefaultCatalog()
	}
	return &chatService{
		log:      log.With("service", "ChatService"),
		userRepo: userRepo,
		manager:  manager,
		executor: executor,
		recorder: recorder,
		catalog:  catalog,
	}
}

func (cs *chatService) Providers() []string { return cs.manager.Providers() }

// conversation prefixes the system prompt. A lone message is only used when no
// history was sent.
func (cs *chatService) conversation(in ChatInput) ([]llm.Message, error) {
	out := []llm.Message{{Role: llm.RoleSystem, Content: cs.catalog.SystemPrompt}}
	for i, m := range in.Messages {
		switch m.Role {
		case llm.RoleUser, llm.RoleAssistant, llm.RoleSystem:
		default:
			return nil, invalid("messages", "message %d has unknown role %q", i, m.Role)
		}
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	if len(in.Messages) == 0 {
		msg := strings.TrimSpace(in.Message)
		if msg == "" {
			return nil, invalid("message", "message or messages required")
		}
		out = append(out, llm.Message{Role: llm.RoleUser, Content: msg})
	}
	return out, nil
}

func lastUserText(in ChatInput) string {
	if in.Message != "" {
		return in.Message
	}
	if n := len(in.Messages); n > 0 {
		return in.Messages[n-1].Content
	}
	return ""
}

func (cs *chatService) Chat(ctx context.Context, userID uuid.UUID, in ChatInput) (*ChatReply, error) {
	if _, err := cs.userRepo.GetByID(dbctx.Context{Ctx: ctx}, userID); err != nil {
		return nil, err
	}
	msgs, err := cs.conversation(in)
	if err != nil {
		return nil, err
	}
	res, err := cs.manager.Chat(ctx, ChatRequest{
		UserID:   userID,
		Messages: msgs,
		Options: llm.Options{
			Temperature: pointers.Ptr(llm.DefaultTemperature),
			MaxTokens:   llm.DefaultMaxTokens,
			Functions:   cs.catalog.Functions,
		},
	})
	if err != nil {
		return nil, err
	}

	executed := []FunctionResult{}
	if len(res.Functions) > 0 {
		executed = cs.executor.Execute(ctx, userID, res.Functions)
	}

	cs.recorder.Record(ctx, AILogEntry{
		UserID:     userID,
		Action:     ailog.ActionChat,
		EntityType: ailog.EntityConversation,
		Details: map[string]any{
			"provider":  res.Provider,
			"message":   lastUserText(in),
			"response":  res.Content,
			"functions": executed,
		},
	})
	return &ChatReply{Content: res.Content, Functions: executed, Provider: res.Provider}, nil
}
