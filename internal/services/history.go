package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
)

type HistoryService interface {
	// List pages the user's AILog newest first. limit <= 0 means the default.
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.AILog, error)
}

type historyService struct {
	repo repos.AILogRepo
}

func NewHistoryService(repo repos.AILogRepo) HistoryService {
	return &historyService{repo: repo}
}

func (hs *historyService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*types.AILog, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	logs, err := hs.repo.ListByUser(dbctx.Context{Ctx: ctx}, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []*types.AILog{}
	}
	return logs, nil
}
