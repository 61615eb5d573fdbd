package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	plannerrepo "github.com/yungbote/lifepilot-backend/internal/data/repos/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/dbctx"
)

type DashboardStats struct {
	Tasks struct {
		Active   int64 `json:"active"`
		DueToday int64 `json:"dueToday"`
	} `json:"tasks"`
	Goals struct {
		Active   int64 `json:"active"`
		Progress int   `json:"progress"`
	} `json:"goals"`
	Habits struct {
		Active int64 `json:"active"`
		Streak int   `json:"streak"`
	} `json:"habits"`
	Journal struct {
		Entries int64 `json:"entries"`
	} `json:"journal"`
}

type DashboardService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error)
}

type dashboardService struct {
	repos PlannerRepos
	now   func() time.Time
}

func NewDashboardService(r PlannerRepos) DashboardService {
	return &dashboardService{repos: r, now: time.Now}
}

func where(cond string, args ...any) plannerrepo.Scope {
	return func(q *gorm.DB) *gorm.DB { return q.Where(cond, args...) }
}

// Stats counts only rows that were not explicitly rejected.
func (s *dashboardService) Stats(ctx context.Context, userID uuid.UUID) (*DashboardStats, error) {
	today := startOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())

	openTasks := where("completed = ?", false)
	openGoals := where("completed = ?", false)
	activeHabits := where("active = ?", true)

	out := &DashboardStats{}
	g, gctx := errgroup.WithContext(ctx)
	dbc := func() dbctx.Context { return dbctx.Context{Ctx: gctx} }

	g.Go(func() (err error) {
		out.Tasks.Active, err = s.repos.Tasks.Count(dbc(), userID, openTasks, plannerrepo.NotRejected)
		return err
	})
	g.Go(func() (err error) {
		out.Tasks.DueToday, err = s.repos.Tasks.Count(dbc(), userID, openTasks, plannerrepo.NotRejected,
			where("due_date >= ? AND due_date < ?", today, tomorrow))
		return err
	})
	g.Go(func() error {
		goals, err := s.repos.Goals.List(dbc(), userID, plannerrepo.ListOptions{Scopes: []plannerrepo.Scope{openGoals, plannerrepo.NotRejected}})
		if err != nil {
			return err
		}
		out.Goals.Active = int64(len(goals))
		if len(goals) > 0 {
			sum := 0
			for _, goal := range goals {
				sum += goal.Progress
			}
			out.Goals.Progress = int(float64(sum)/float64(len(goals)) + 0.5)
		}
		return nil
	})
	g.Go(func() error {
		habits, err := s.repos.Habits.List(dbc(), userID, plannerrepo.ListOptions{Scopes: []plannerrepo.Scope{activeHabits, plannerrepo.NotRejected}})
		if err != nil {
			return err
		}
		out.Habits.Active = int64(len(habits))
		for _, h := range habits {
			if h.Streak > out.Habits.Streak {
				out.Habits.Streak = h.Streak
			}
		}
		return nil
	})
	g.Go(func() (err error) {
		out.Journal.Entries, err = s.repos.Journals.Count(dbc(), userID, where("created_at >= ?", monthStart))
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
