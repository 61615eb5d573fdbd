package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/yungbote/lifepilot-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		Email:    email,
		Password: "pw",
		Name:     "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, task *types.Task) *types.Task {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(task).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return task
}

func SeedHabit(tb testing.TB, ctx context.Context, tx *gorm.DB, habit *types.Habit) *types.Habit {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(habit).Error; err != nil {
		tb.Fatalf("seed habit: %v", err)
	}
	return habit
}
