package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	plannerrepo "github.com/yungbote/lifepilot-backend/internal/data/repos/planner"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/realtime"
)

type Suggestion struct {
	ID        uuid.UUID      `json:"id"`
	Type      types.Kind     `json:"type"`
	Data      any            `json:"data"`
	Status    planner.Status `json:"status"`
	CreatedAt time.Time      `json:"createdAt"`
}

type SuggestionService interface {
	// List returns every assistant-suggested row of every kind, newest first.
	List(ctx context.Context, userID uuid.UUID) ([]Suggestion, error)
	// Approve resolves a pending suggestion. Resolved, foreign and unknown ids
	// are apperrors.ErrNotFound.
	Approve(ctx context.Context, userID, id uuid.UUID) (types.Kind, error)
	Reject(ctx context.Context, userID, id uuid.UUID) (types.Kind, error)
}

type suggestionAccessor interface {
	list(dbc dbctx.Context, userID uuid.UUID) ([]Suggestion, error)
	resolve(dbc dbctx.Context, userID, id uuid.UUID, approved bool) (bool, error)
	get(dbc dbctx.Context, userID, id uuid.UUID) (any, error)
}

type rowMeta struct {
	id         uuid.UUID
	provenance types.Provenance
	createdAt  time.Time
}

type kindAccessor[T any] struct {
	kind types.Kind
	repo plannerrepo.OwnedRepo[T]
	meta func(*T) rowMeta
}

func (a kindAccessor[T]) list(dbc dbctx.Context, userID uuid.UUID) ([]Suggestion, error) {
	rows, err := a.repo.ListSuggested(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s suggestions: %w", a.kind, err)
	}
	out := make([]Suggestion, 0, len(rows))
	for _, row := range rows {
		m := a.meta(row)
		out = append(out, Suggestion{
			ID:        m.id,
			Type:      a.kind,
			Data:      row,
			Status:    m.provenance.Status(),
			CreatedAt: m.createdAt,
		})
	}
	return out, nil
}

func (a kindAccessor[T]) resolve(dbc dbctx.Context, userID, id uuid.UUID, approved bool) (bool, error) {
	return a.repo.ResolvePending(dbc, userID, id, approved)
}

func (a kindAccessor[T]) get(dbc dbctx.Context, userID, id uuid.UUID) (any, error) {
	return a.repo.GetByID(dbc, userID, id)
}

type suggestionService struct {
	log      *logger.Logger
	registry map[types.Kind]suggestionAccessor
	recorder AILogRecorder
	emit     Emitter
}

func NewSuggestionService(log *logger.Logger, r PlannerRepos, recorder AILogRecorder, emit Emitter) SuggestionService {
	return &suggestionService{
		log: log.With("service", "SuggestionService"),
		registry: map[types.Kind]suggestionAccessor{
			types.KindTask: kindAccessor[types.Task]{kind: types.KindTask, repo: r.Tasks, meta: func(t *types.Task) rowMeta {
				return rowMeta{t.ID, t.Provenance, t.CreatedAt}
			}},
			types.KindGoal: kindAccessor[types.Goal]{kind: types.KindGoal, repo: r.Goals, meta: func(g *types.Goal) rowMeta {
				return rowMeta{g.ID, g.Provenance, g.CreatedAt}
			}},
			types.KindHabit: kindAccessor[types.Habit]{kind: types.KindHabit, repo: r.Habits, meta: func(h *types.Habit) rowMeta {
				return rowMeta{h.ID, h.Provenance, h.CreatedAt}
			}},
			types.KindRoutine: kindAccessor[types.Routine]{kind: types.KindRoutine, repo: r.Routines, meta: func(rt *types.Routine) rowMeta {
				return rowMeta{rt.ID, rt.Provenance, rt.CreatedAt}
			}},
			types.KindJournal: kindAccessor[types.Journal]{kind: types.KindJournal, repo: r.Journals, meta: func(j *types.Journal) rowMeta {
				return rowMeta{j.ID, j.Provenance, j.CreatedAt}
			}},
		},
		recorder: recorder,
		emit:     emit,
	}
}

func (s *suggestionService) List(ctx context.Context, userID uuid.UUID) ([]Suggestion, error) {
	perKind := make([][]Suggestion, len(planner.SuggestibleKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range planner.SuggestibleKinds {
		acc := s.registry[kind]
		g.Go(func() error {
			rows, err := acc.list(dbctx.Context{Ctx: gctx}, userID)
			if err != nil {
				return err
			}
			perKind[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []Suggestion
	for _, rows := range perKind {
		out = append(out, rows...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if out == nil {
		out = []Suggestion{}
	}
	return out, nil
}

func (s *suggestionService) Approve(ctx context.Context, userID, id uuid.UUID) (types.Kind, error) {
	return s.resolve(ctx, userID, id, true)
}

func (s *suggestionService) Reject(ctx context.Context, userID, id uuid.UUID) (types.Kind, error) {
	return s.resolve(ctx, userID, id, false)
}

func (s *suggestionService) resolve(ctx context.Context, userID, id uuid.UUID, approved bool) (types.Kind, error) {
	dbc := dbctx.Context{Ctx: ctx}
	for _, kind := range planner.SuggestibleKinds {
		acc := s.registry[kind]
		ok, err := acc.resolve(dbc, userID, id, approved)
		if err != nil {
			return "", fmt.Errorf("resolve %s suggestion: %w", kind, err)
		}
		if !ok {
			continue
		}

		action := ailog.ActionApprove
		if !approved {
			action = ailog.ActionReject
		}
		s.recorder.Record(ctx, AILogEntry{
			UserID:     userID,
			Action:     action,
			EntityType: string(kind),
			EntityID:   &id,
			Details:    map[string]any{"approved": approved},
			Approved:   &approved,
		})
		if row, err := acc.get(dbc, userID, id); err == nil {
			emitEntity(ctx, s.emit, userID, string(kind), realtime.OpUpdated, row)
		} else {
			s.log.Warn("resolved suggestion could not be reloaded", "kind", string(kind), "error", err)
		}
		s.log.Info("suggestion resolved", "kind", string(kind), "approved", approved, "user_id", userID.String())
		return kind, nil
	}
	return "", fmt.Errorf("no pending suggestion %s: %w", id, apperrors.ErrNotFound)
}
