package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// UserTokenRepo stores login sessions. A row's ID doubles as the access token's sid claim.
type UserTokenRepo interface {
	Open(dbc dbctx.Context, session *types.UserToken) error
	Get(dbc dbctx.Context, sessionID uuid.UUID) (*types.UserToken, error)
	Revoke(dbc dbctx.Context, sessionIDs ...uuid.UUID) error
	PruneExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return &userTokenRepo{db: db, log: baseLog.With("repo", "UserTokenRepo")}
}

func (r *userTokenRepo) conn(dbc dbctx.Context) *gorm.DB {
	tx := dbc.Tx
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(dbc.Context())
}

func (r *userTokenRepo) Open(dbc dbctx.Context, session *types.UserToken) error {
	if session == nil || session.UserID == uuid.Nil {
		return fmt.Errorf("session without user: %w", apperrors.ErrInvalidArgument)
	}
	return r.conn(dbc).Create(session).Error
}

func (r *userTokenRepo) Get(dbc dbctx.Context, sessionID uuid.UUID) (*types.UserToken, error) {
	var row types.UserToken
	err := r.conn(dbc).Where("id = ?", sessionID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *userTokenRepo) Revoke(dbc dbctx.Context, sessionIDs ...uuid.UUID) error {
	if len(sessionIDs) == 0 {
		return nil
	}
	return r.conn(dbc).Where("id IN ?", sessionIDs).Delete(&types.UserToken{}).Error
}

// PruneExpired soft deletes the user's sessions whose refresh window has closed.
func (r *userTokenRepo) PruneExpired(dbc dbctx.Context, userID uuid.UUID, now time.Time) (int64, error) {
	res := r.conn(dbc).Where("user_id = ? AND expires_at <= ?", userID, now).Delete(&types.UserToken{})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Debug("pruned expired sessions", "user_id", userID.String(), "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
