package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates the composite indexes gorm tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_content_plan_user_start", `CREATE INDEX IF NOT EXISTS idx_content_plan_user_start ON content_plan (user_id, start_date);`},
		{"idx_plan_task_user_plan", `CREATE INDEX IF NOT EXISTS idx_plan_task_user_plan ON plan_task (user_id, plan_id);`},
		{"idx_quiz_response_user_created", `CREATE INDEX IF NOT EXISTS idx_quiz_response_user_created ON quiz_response (user_id, created_at DESC);`},
		{"idx_generated_ideas_user_created", `CREATE INDEX IF NOT EXISTS idx_generated_ideas_user_created ON generated_ideas (user_id, created_at DESC);`},
		{"idx_chat_conversation_user_last", `CREATE INDEX IF NOT EXISTS idx_chat_conversation_user_last ON chat_conversation (user_id, last_message_at DESC);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
