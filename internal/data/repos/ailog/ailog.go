package ailog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// AILogRepo is append-only: there is deliberately no update or delete.
type AILogRepo interface {
	Create(dbc dbctx.Context, logs []*types.AILog) ([]*types.AILog, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AILog, error)
}

type aiLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAILogRepo(db *gorm.DB, baseLog *logger.Logger) AILogRepo {
	repoLog := baseLog.With("repo", "AILogRepo")
	return &aiLogRepo{db: db, log: repoLog}
}

func (r *aiLogRepo) Create(dbc dbctx.Context, logs []*types.AILog) ([]*types.AILog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.AILog{}, nil
	}
	if err := transaction.WithContext(dbc.Context()).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *aiLogRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit, offset int) ([]*types.AILog, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var results []*types.AILog
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
