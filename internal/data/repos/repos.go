package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos/chat"
	"github.com/yungbote/creatorcoach-backend/internal/data/repos/ideas"
	"github.com/yungbote/creatorcoach-backend/internal/data/repos/plan"
	"github.com/yungbote/creatorcoach-backend/internal/data/repos/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/data/repos/settings"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type QuizResponseRepo = quiz.QuizResponseRepo
type ContentPlanRepo = plan.ContentPlanRepo
type PlanTaskRepo = plan.PlanTaskRepo
type GeneratedIdeasRepo = ideas.GeneratedIdeasRepo
type ChatConversationRepo = chat.ChatConversationRepo
type ChatMessageRepo = chat.ChatMessageRepo
type UserSettingsRepo = settings.UserSettingsRepo

var ErrDuplicateTask = plan.ErrDuplicateTask

func NewQuizResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuizResponseRepo {
	return quiz.NewQuizResponseRepo(db, baseLog)
}
func NewContentPlanRepo(db *gorm.DB, baseLog *logger.Logger) ContentPlanRepo {
	return plan.NewContentPlanRepo(db, baseLog)
}
func NewPlanTaskRepo(db *gorm.DB, baseLog *logger.Logger) PlanTaskRepo {
	return plan.NewPlanTaskRepo(db, baseLog)
}
func NewGeneratedIdeasRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedIdeasRepo {
	return ideas.NewGeneratedIdeasRepo(db, baseLog)
}
func NewChatConversationRepo(db *gorm.DB, baseLog *logger.Logger) ChatConversationRepo {
	return chat.NewChatConversationRepo(db, baseLog)
}
func NewChatMessageRepo(db *gorm.DB, baseLog *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, baseLog)
}
func NewUserSettingsRepo(db *gorm.DB, baseLog *logger.Logger) UserSettingsRepo {
	return settings.NewUserSettingsRepo(db, baseLog)
}
