package services

import (
	"testing"
	"time"

	"github.com/yungbote/lifepilot-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lifepilot-backend/internal/domain"
	"github.com/yungbote/lifepilot-backend/internal/domain/planner"
	"github.com/yungbote/lifepilot-backend/internal/pkg/pointers"
)

func TestDashboardStats(t *testing.T) {
	e := newTestEnv(t)
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	rejected := types.Provenance{AISuggested: true, AIApproved: pointers.Bool(false)}
	pendingRow := types.Provenance{AISuggested: true}
	dueToday := now.Add(3 * time.Hour)
	dueLater := now.AddDate(0, 0, 2)

	testutil.SeedTask(t, e.ctx, e.db, &types.Task{UserID: e.user.ID, Title: "today", DueDate: &dueToday})
	testutil.SeedTask(t, e.ctx, e.db, &types.Task{UserID: e.user.ID, Title: "later", DueDate: &dueLater, Provenance: pendingRow})
	testutil.SeedTask(t, e.ctx, e.db, &types.Task{UserID: e.user.ID, Title: "done", Completed: true, DueDate: &dueToday})
	testutil.SeedTask(t, e.ctx, e.db, &types.Task{UserID: e.user.ID, Title: "nope", DueDate: &dueToday, Provenance: rejected})

	for _, g := range []*types.Goal{
		{UserID: e.user.ID, Title: "a", Progress: 20},
		{UserID: e.user.ID, Title: "b", Progress: 45},
		{UserID: e.user.ID, Title: "c", Progress: 100, Completed: true},
		{UserID: e.user.ID, Title: "d", Progress: 90, Provenance: rejected},
	} {
		if err := e.db.Create(g).Error; err != nil {
			t.Fatalf("seed goal: %v", err)
		}
	}

	testutil.SeedHabit(t, e.ctx, e.db, &types.Habit{UserID: e.user.ID, Title: "read", Frequency: planner.FrequencyDaily, Active: true, Streak: 4})
	testutil.SeedHabit(t, e.ctx, e.db, &types.Habit{UserID: e.user.ID, Title: "run", Frequency: planner.FrequencyWeekly, Active: true, Streak: 9})
	testutil.SeedHabit(t, e.ctx, e.db, &types.Habit{UserID: e.user.ID, Title: "old", Frequency: planner.FrequencyDaily, Active: false, Streak: 30})
	testutil.SeedHabit(t, e.ctx, e.db, &types.Habit{UserID: e.user.ID, Title: "fake", Frequency: planner.FrequencyDaily, Active: true, Streak: 50, Provenance: rejected})

	for _, created := range []time.Time{now.AddDate(0, 0, -2), now.AddDate(0, -1, 0)} {
		j := &types.Journal{UserID: e.user.ID, Title: "entry", Content: "x", CreatedAt: created}
		if err := e.db.Create(j).Error; err != nil {
			t.Fatalf("seed journal: %v", err)
		}
	}

	svc := NewDashboardService(e.planner).(*dashboardService)
	svc.now = func() time.Time { return now }
	stats, err := svc.Stats(e.ctx, e.user.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Tasks.Active != 2 || stats.Tasks.DueToday != 1 {
		t.Fatalf("tasks %+v", stats.Tasks)
	}
	if stats.Goals.Active != 2 || stats.Goals.Progress != 33 {
		t.Fatalf("goals %+v", stats.Goals)
	}
	if stats.Habits.Active != 2 || stats.Habits.Streak != 9 {
		t.Fatalf("habits %+v", stats.Habits)
	}
	if stats.Journal.Entries != 1 {
		t.Fatalf("journal %+v", stats.Journal)
	}
}

func TestDashboardEmpty(t *testing.T) {
	e := newTestEnv(t)
	stats, err := NewDashboardService(e.planner).Stats(e.ctx, e.user.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Goals.Progress != 0 || stats.Habits.Streak != 0 || stats.Tasks.Active != 0 {
		t.Fatalf("stats %+v", stats)
	}
}
