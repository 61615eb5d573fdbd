package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/lifepilot-backend/internal/data/repos"
	"github.com/yungbote/lifepilot-backend/internal/platform/logger"
	"github.com/yungbote/lifepilot-backend/internal/services"
)

type Repos struct {
	User      repos.UserRepo
	UserToken repos.UserTokenRepo
	AILog     repos.AILogRepo
	Planner   services.PlannerRepos
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:      repos.NewUserRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
		AILog:     repos.NewAILogRepo(db, log),
		Planner: services.PlannerRepos{
			Tasks:    repos.NewTaskRepo(db, log),
			Goals:    repos.NewGoalRepo(db, log),
			Habits:   repos.NewHabitRepo(db, log),
			Routines: repos.NewRoutineRepo(db, log),
			Journals: repos.NewJournalRepo(db, log),
		},
	}
}
