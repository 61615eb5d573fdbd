package repos

import (
	"github.com/yungbote/lifepilot-backend/internal/data/repos/ailog"
	"github.com/yungbote/lifepilot-backend/internal/data/repos/auth"
	"github.com/yungbote/lifepilot-backend/internal/data/repos/planner"
	"github.com/yungbote/lifepilot-backend/internal/data/repos/user"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type TaskRepo = planner.TaskRepo
type GoalRepo = planner.GoalRepo
type HabitRepo = planner.HabitRepo
type JournalRepo = planner.JournalRepo
type RoutineRepo = planner.RoutineRepo

type AILogRepo = ailog.AILogRepo

type ListOptions = planner.ListOptions
type Scope = planner.Scope

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}

func NewTaskRepo(db *gorm.DB, log *logger.Logger) TaskRepo       { return planner.NewTaskRepo(db, log) }
func NewGoalRepo(db *gorm.DB, log *logger.Logger) GoalRepo       { return planner.NewGoalRepo(db, log) }
func NewHabitRepo(db *gorm.DB, log *logger.Logger) HabitRepo     { return planner.NewHabitRepo(db, log) }
func NewJournalRepo(db *gorm.DB, log *logger.Logger) JournalRepo { return planner.NewJournalRepo(db, log) }
func NewRoutineRepo(db *gorm.DB, log *logger.Logger) RoutineRepo { return planner.NewRoutineRepo(db, log) }

func NewAILogRepo(db *gorm.DB, log *logger.Logger) AILogRepo { return ailog.NewAILogRepo(db, log) }
