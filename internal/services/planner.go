package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	plannerrepo "github.com/yungbote/lifepilot-backend/internal/data/repos/planner"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

// EntityService is owner-scoped CRUD for one planner kind. Inputs are decoded
// JSON objects; unknown keys are ignored.
type EntityService interface {
	Kind() types.Kind
	List(ctx context.Context, userID uuid.UUID) (any, error)
	Get(ctx context.Context, userID, id uuid.UUID) (any, error)
	Create(ctx context.Context, userID uuid.UUID, in map[string]any) (any, error)
	Update(ctx context.Context, userID, id uuid.UUID, in map[string]any) (any, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type PlannerService struct {
	Tasks    EntityService
	Goals    EntityService
	Habits   EntityService
	Journals EntityService
	Routines EntityService
}

func NewPlannerService(db *gorm.DB, log *logger.Logger, r PlannerRepos, recorder AILogRecorder, emit Emitter) *PlannerService {
	base := entityDeps{db: db, log: log, recorder: recorder, emit: emit}
	return &PlannerService{
		Tasks: newEntityService(base, types.KindTask, r.Tasks, entityHooks[types.Task]{
			build: buildTask,
			patch: patchTask,
			meta:  func(t *types.Task) rowMeta { return rowMeta{t.ID, t.Provenance, t.CreatedAt} },
		}),
		Goals: newEntityService(base, types.KindGoal, r.Goals, entityHooks[types.Goal]{
			build: buildGoal,
			patch: patchGoal,
			meta:  func(g *types.Goal) rowMeta { return rowMeta{g.ID, g.Provenance, g.CreatedAt} },
		}),
		Habits: newEntityService(base, types.KindHabit, r.Habits, entityHooks[types.Habit]{
			build: buildHabit,
			patch: patchHabit,
			meta:  func(h *types.Habit) rowMeta { return rowMeta{h.ID, h.Provenance, h.CreatedAt} },
		}),
		Journals: newEntityService(base, types.KindJournal, r.Journals, entityHooks[types.Journal]{
			build: buildJournal,
			patch: patchJournal,
			meta:  func(j *types.Journal) rowMeta { return rowMeta{j.ID, j.Provenance, j.CreatedAt} },
		}),
		Routines: newEntityService(base, types.KindRoutine, plannerrepo.OwnedRepo[types.Routine](r.Routines), entityHooks[types.Routine]{
			build: buildRoutine,
			patch: patchRoutine,
			meta:  func(rt *types.Routine) rowMeta { return rowMeta{rt.ID, rt.Provenance, rt.CreatedAt} },
			afterSave: func(dbc dbctx.Context, userID, id uuid.UUID, in map[string]any) error {
				habitIDs, err := argIDs(in, "habitIds")
				if err != nil {
					return err
				}
				taskIDs, err := argIDs(in, "taskIds")
				if err != nil {
					return err
				}
				if habitIDs == nil && taskIDs == nil {
					return nil
				}
				return r.Routines.SetLinks(dbc, userID, id, habitIDs, taskIDs)
			},
		}),
	}
}

// ByKind returns the service for kind, or nil.
func (p *PlannerService) ByKind(kind types.Kind) EntityService {
	switch kind {
	case types.KindTask:
		return p.Tasks
	case types.KindGoal:
		return p.Goals
	case types.KindHabit:
		return p.Habits
	case types.KindJournal:
		return p.Journals
	case types.KindRoutine:
		return p.Routines
	}
	return nil
}

type entityDeps struct {
	db       *gorm.DB
	log      *logger.Logger
	recorder AILogRecorder
	emit     Emitter
}

type entityHooks[T any] struct {
	build func(userID uuid.UUID, in map[string]any) (*T, error)
	patch func(in map[string]any) (map[string]any, error)
	meta  func(*T) rowMeta
	// afterSave runs inside the create/update transaction.
	afterSave func(dbc dbctx.Context, userID, id uuid.UUID, in map[string]any) error
}

type entityService[T any] struct {
	entityDeps
	kind  types.Kind
	repo  plannerrepo.OwnedRepo[T]
	hooks entityHooks[T]
}

func newEntityService[T any](deps entityDeps, kind types.Kind, repo plannerrepo.OwnedRepo[T], hooks entityHooks[T]) *entityService[T] {
	deps.log = deps.log.With("service", "PlannerService", "kind", string(kind))
	return &entityService[T]{entityDeps: deps, kind: kind, repo: repo, hooks: hooks}
}

func (s *entityService[T]) Kind() types.Kind { return s.kind }

func (s *entityService[T]) List(ctx context.Context, userID uuid.UUID) (any, error) {
	rows, err := s.repo.List(dbctx.Context{Ctx: ctx}, userID, plannerrepo.ListOptions{})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []*T{}
	}
	return rows, nil
}

func (s *entityService[T]) Get(ctx context.Context, userID, id uuid.UUID) (any, error) {
	return s.repo.GetByID(dbctx.Context{Ctx: ctx}, userID, id)
}

func (s *entityService[T]) Create(ctx context.Context, userID uuid.UUID, in map[string]any) (any, error) {
	row, err := s.hooks.build(userID, in)
	if err != nil {
		return nil, err
	}
	var saved *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.repo.Create(dbc, []*T{row}); err != nil {
			return err
		}
		id := s.hooks.meta(row).id
		if s.hooks.afterSave != nil {
			if err := s.hooks.afterSave(dbc, userID, id, in); err != nil {
				return err
			}
		}
		saved, err = s.repo.GetByID(dbc, userID, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", s.kind, err)
	}
	m := s.hooks.meta(saved)
	if m.provenance.AISuggested {
		s.audit(ctx, userID, ailog.ActionCreate, m.id, in)
	}
	emitEntity(ctx, s.emit, userID, string(s.kind), realtime.OpCreated, saved)
	return saved, nil
}

func (s *entityService[T]) Update(ctx context.Context, userID, id uuid.UUID, in map[string]any) (any, error) {
	fields, err := s.hooks.patch(in)
	if err != nil {
		return nil, err
	}
	var saved *T
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.repo.Update(dbc, userID, id, fields); err != nil {
			return err
		}
		if s.hooks.afterSave != nil {
			if err := s.hooks.afterSave(dbc, userID, id, in); err != nil {
				return err
			}
		}
		saved, err = s.repo.GetByID(dbc, userID, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.kind, err)
	}
	if s.hooks.meta(saved).provenance.AISuggested {
		s.audit(ctx, userID, ailog.ActionUpdate, id, in)
	}
	emitEntity(ctx, s.emit, userID, string(s.kind), realtime.OpUpdated, saved)
	return saved, nil
}

func (s *entityService[T]) Delete(ctx context.Context, userID, id uuid.UUID) error {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := s.repo.GetByID(dbc, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(dbc, userID, id); err != nil {
		return err
	}
	if s.hooks.meta(row).provenance.AISuggested {
		s.audit(ctx, userID, ailog.ActionDelete, id, map[string]any{string(s.kind) + "Id": id.String()})
	}
	emitEntity(ctx, s.emit, userID, string(s.kind), realtime.OpDeleted, map[string]string{"id": id.String()})
	return nil
}

func (s *entityService[T]) audit(ctx context.Context, userID uuid.UUID, action types.AIAction, id uuid.UUID, details any) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, AILogEntry{
		UserID:     userID,
		Action:     action,
		EntityType: string(s.kind),
		EntityID:   &id,
		Details:    details,
	})
}
