package planner

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

// Scope narrows a query. Scopes compose with gorm's Scopes().
type Scope = func(*gorm.DB) *gorm.DB

type ListOptions struct {
	Scopes []Scope
	Limit  int
	Offset int
	// Order defaults to "created_at DESC".
	Order string
}

// OwnedRepo is the user-scoped persistence contract shared by every planner kind.
// Each read and write carries (id, user_id); a row owned by another user is
// reported as apperrors.ErrNotFound.
type OwnedRepo[T any] interface {
	Create(dbc dbctx.Context, rows []*T) ([]*T, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*T, error)
	List(dbc dbctx.Context, userID uuid.UUID, opts ListOptions) ([]*T, error)
	Count(dbc dbctx.Context, userID uuid.UUID, scopes ...Scope) (int64, error)
	Update(dbc dbctx.Context, userID, id uuid.UUID, fields map[string]any) (*T, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) error
	ListSuggested(dbc dbctx.Context, userID uuid.UUID) ([]*T, error)
	// ResolvePending flips ai_approved on a pending suggestion. It reports false
	// when no pending row matched, including when another caller resolved it first.
	ResolvePending(dbc dbctx.Context, userID, id uuid.UUID, approved bool) (bool, error)
}

type ownedRepo[T any] struct {
	db       *gorm.DB
	log      *logger.Logger
	name     string
	preloads []string
}

func newOwnedRepo[T any](db *gorm.DB, baseLog *logger.Logger, name string, preloads ...string) *ownedRepo[T] {
	return &ownedRepo[T]{
		db:       db,
		log:      baseLog.With("repo", name),
		name:     name,
		preloads: preloads,
	}
}

func (r *ownedRepo[T]) tx(dbc dbctx.Context) *gorm.DB {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Context())
}

func (r *ownedRepo[T]) withPreloads(q *gorm.DB) *gorm.DB {
	for _, p := range r.preloads {
		q = q.Preload(p)
	}
	return q
}

func (r *ownedRepo[T]) Create(dbc dbctx.Context, rows []*T) ([]*T, error) {
	if len(rows) == 0 {
		return []*T{}, nil
	}
	if err := r.tx(dbc).Create(&rows).Error; err != nil {
		return nil, fmt.Errorf("%s create: %w", r.name, err)
	}
	return rows, nil
}

func (r *ownedRepo[T]) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*T, error) {
	var row T
	err := r.withPreloads(r.tx(dbc)).
		Where("id = ? AND user_id = ?", id, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s %s: %w", r.name, id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *ownedRepo[T]) List(dbc dbctx.Context, userID uuid.UUID, opts ListOptions) ([]*T, error) {
	order := opts.Order
	if order == "" {
		order = "created_at DESC"
	}
	q := r.withPreloads(r.tx(dbc)).
		Where("user_id = ?", userID).
		Scopes(opts.Scopes...).
		Order(order)
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	var results []*T
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *ownedRepo[T]) Count(dbc dbctx.Context, userID uuid.UUID, scopes ...Scope) (int64, error) {
	var count int64
	if err := r.tx(dbc).
		Model(new(T)).
		Where("user_id = ?", userID).
		Scopes(scopes...).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ownedRepo[T]) Update(dbc dbctx.Context, userID, id uuid.UUID, fields map[string]any) (*T, error) {
	if len(fields) > 0 {
		res := r.tx(dbc).
			Model(new(T)).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(fields)
		if res.Error != nil {
			return nil, fmt.Errorf("%s update: %w", r.name, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, fmt.Errorf("%s %s: %w", r.name, id, apperrors.ErrNotFound)
		}
	}
	return r.GetByID(dbc, userID, id)
}

func (r *ownedRepo[T]) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	res := r.tx(dbc).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("%s delete: %w", r.name, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", r.name, id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *ownedRepo[T]) ListSuggested(dbc dbctx.Context, userID uuid.UUID) ([]*T, error) {
	return r.List(dbc, userID, ListOptions{Scopes: []Scope{Suggested}})
}

func (r *ownedRepo[T]) ResolvePending(dbc dbctx.Context, userID, id uuid.UUID, approved bool) (bool, error) {
	res := r.tx(dbc).
		Model(new(T)).
		Where("id = ? AND user_id = ? AND ai_suggested = ? AND ai_approved IS NULL", id, userID, true).
		Update("ai_approved", approved)
	if res.Error != nil {
		return false, fmt.Errorf("%s resolve: %w", r.name, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// Suggested keeps rows the assistant created.
func Suggested(q *gorm.DB) *gorm.DB {
	return q.Where("ai_suggested = ?", true)
}

// NotRejected drops explicitly rejected suggestions; pending ones stay visible.
func NotRejected(q *gorm.DB) *gorm.DB {
	return q.Where("(ai_approved IS NULL OR ai_approved = ?)", true)
}
