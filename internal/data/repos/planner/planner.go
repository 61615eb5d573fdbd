package planner

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
	apperrors "github.com/yungbote/lifepilot-backend/internal/pkg/errors"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
)

type TaskRepo = OwnedRepo[types.Task]
type GoalRepo = OwnedRepo[types.Goal]
type HabitRepo = OwnedRepo[types.Habit]
type JournalRepo = OwnedRepo[types.Journal]

func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return newOwnedRepo[types.Task](db, baseLog, "TaskRepo")
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return newOwnedRepo[types.Goal](db, baseLog, "GoalRepo")
}

func NewHabitRepo(db *gorm.DB, baseLog *logger.Logger) HabitRepo {
	return newOwnedRepo[types.Habit](db, baseLog, "HabitRepo")
}

func NewJournalRepo(db *gorm.DB, baseLog *logger.Logger) JournalRepo {
	return newOwnedRepo[types.Journal](db, baseLog, "JournalRepo")
}

// RoutineRepo adds the habit/task links on top of the owned contract.
type RoutineRepo interface {
	OwnedRepo[types.Routine]
	// SetLinks replaces the linked habits and tasks. Nil slices leave that link set
	// untouched. Ids not owned by userID are ignored.
	SetLinks(dbc dbctx.Context, userID, routineID uuid.UUID, habitIDs, taskIDs []uuid.UUID) error
}

type routineRepo struct {
	*ownedRepo[types.Routine]
}

func NewRoutineRepo(db *gorm.DB, baseLog *logger.Logger) RoutineRepo {
	return &routineRepo{ownedRepo: newOwnedRepo[types.Routine](db, baseLog, "RoutineRepo", "Habits", "Tasks")}
}

func (r *routineRepo) SetLinks(dbc dbctx.Context, userID, routineID uuid.UUID, habitIDs, taskIDs []uuid.UUID) error {
	if habitIDs == nil && taskIDs == nil {
		return nil
	}
	q := r.tx(dbc)
	routine := &types.Routine{ID: routineID}
	var count int64
	if err := q.Model(&types.Routine{}).Where("id = ? AND user_id = ?", routineID, userID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("routine %s: %w", routineID, apperrors.ErrNotFound)
	}
	if habitIDs != nil {
		habits := []*types.Habit{}
		if len(habitIDs) > 0 {
			if err := q.Where("id IN ? AND user_id = ?", habitIDs, userID).Find(&habits).Error; err != nil {
				return err
			}
		}
		if err := q.Model(routine).Association("Habits").Replace(habits); err != nil {
			return fmt.Errorf("routine habits: %w", err)
		}
	}
	if taskIDs != nil {
		tasks := []*types.Task{}
		if len(taskIDs) > 0 {
			if err := q.Where("id IN ? AND user_id = ?", taskIDs, userID).Find(&tasks).Error; err != nil {
				return err
			}
		}
		if err := q.Model(routine).Association("Tasks").Replace(tasks); err != nil {
			return fmt.Errorf("routine tasks: %w", err)
		}
	}
	return nil
}

func (r *routineRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) error {
	return r.tx(dbc).Transaction(func(txx *gorm.DB) error {
		inner := dbctx.Context{Ctx: dbc.Ctx, Tx: txx}
		if _, err := r.ownedRepo.GetByID(inner, userID, id); err != nil {
			return err
		}
		routine := &types.Routine{ID: id}
		if err := txx.Model(routine).Association("Habits").Clear(); err != nil {
			return err
		}
		if err := txx.Model(routine).Association("Tasks").Clear(); err != nil {
			return err
		}
		return r.ownedRepo.Delete(inner, userID, id)
	})
}
