package db

import (
	"fmt"

	"github.com/yungbote/lifepilot-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureIndexes adds the composite indexes behind the hot owner-scoped queries.
// Plain CREATE INDEX IF NOT EXISTS runs on both postgres and sqlite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_task_user_created", `CREATE INDEX IF NOT EXISTS idx_task_user_created ON task(user_id, created_at DESC);`},
		{"idx_task_user_suggested", `CREATE INDEX IF NOT EXISTS idx_task_user_suggested ON task(user_id, ai_suggested, ai_approved);`},
		{"idx_goal_user_suggested", `CREATE INDEX IF NOT EXISTS idx_goal_user_suggested ON goal(user_id, ai_suggested, ai_approved);`},
		{"idx_habit_user_suggested", `CREATE INDEX IF NOT EXISTS idx_habit_user_suggested ON habit(user_id, ai_suggested, ai_approved);`},
		{"idx_routine_user_suggested", `CREATE INDEX IF NOT EXISTS idx_routine_user_suggested ON routine(user_id, ai_suggested, ai_approved);`},
		{"idx_journal_user_suggested", `CREATE INDEX IF NOT EXISTS idx_journal_user_suggested ON journal(user_id, ai_suggested, ai_approved);`},
		{"idx_ai_log_user_created", `CREATE INDEX IF NOT EXISTS idx_ai_log_user_created ON ai_log(user_id, created_at DESC);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
