package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

type AILogEntry struct {
	UserID     uuid.UUID
	Action     types.AIAction
	EntityType string
	EntityID   *uuid.UUID
	Details    any
	Approved   *bool
}

// AILogRecorder appends audit rows. Writes are best-effort: a failure is logged
// and never surfaces to the caller.
type AILogRecorder interface {
	Record(ctx context.Context, entry AILogEntry)
}

type aiLogRecorder struct {
	log  *logger.Logger
	repo repos.AILogRepo
}

func NewAILogRecorder(log *logger.Logger, repo repos.AILogRepo) AILogRecorder {
	return &aiLogRecorder{log: log.With("service", "AILogRecorder"), repo: repo}
}

func (r *aiLogRecorder) Record(ctx context.Context, entry AILogEntry) {
	if r == nil || r.repo == nil || entry.UserID == uuid.Nil {
		return
	}
	var details datatypes.JSON
	if entry.Details != nil {
		raw, err := json.Marshal(entry.Details)
		if err != nil {
			r.log.Warn("ailog details not serializable", "action", string(entry.Action), "error", err)
			raw = []byte("{}")
		}
		details = datatypes.JSON(raw)
	}
	row := &types.AILog{
		UserID:     entry.UserID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    details,
		Approved:   entry.Approved,
	}
	if _, err := r.repo.Create(dbctx.Context{Ctx: ctx}, []*types.AILog{row}); err != nil {
		r.log.Warn("ailog write failed",
			"action", string(entry.Action),
			"entity_type", entry.EntityType,
			"error", err,
		)
	}
}
