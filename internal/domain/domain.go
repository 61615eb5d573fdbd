package domain

import (
	"github.com/yungbote/lifepilot-backend/internal/domain/ailog"
	"github.com/yungbote/lifepilot-backend/internal/domain/auth"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/domain/user"
)

type (
	User       = user.User
	AISettings = user.AISettings
	UserToken  = auth.UserToken

	Provenance  = planner.Provenance
	Kind        = planner.Kind
	Task        = planner.Task
	Goal        = planner.Goal
	Habit       = planner.Habit
	Journal     = planner.Journal
	Routine     = planner.Routine
	RoutineStep = planner.RoutineStep

	AILog    = ailog.AILog
	AIAction = ailog.Action
)

const (
	KindTask    = planner.KindTask
	KindGoal    = planner.KindGoal
	KindHabit   = planner.KindHabit
	KindRoutine = planner.KindRoutine
	KindJournal = planner.KindJournal
)

// Models lists every persisted type in migration order.
func Models() []interface{} {
	return []interface{}{
		&User{},
		&UserToken{},
		&Task{},
		&Goal{},
		&Habit{},
		&Journal{},
		&Routine{},
		&AILog{},
	}
}
