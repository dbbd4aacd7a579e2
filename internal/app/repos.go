package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type Repos struct {
	QuizResponse     repos.QuizResponseRepo
	ContentPlan      repos.ContentPlanRepo
	PlanTask         repos.PlanTaskRepo
	GeneratedIdeas   repos.GeneratedIdeasRepo
	ChatConversation repos.ChatConversationRepo
	ChatMessage      repos.ChatMessageRepo
	UserSettings     repos.UserSettingsRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		QuizResponse:     repos.NewQuizResponseRepo(db, log),
		ContentPlan:      repos.NewContentPlanRepo(db, log),
		PlanTask:         repos.NewPlanTaskRepo(db, log),
		GeneratedIdeas:   repos.NewGeneratedIdeasRepo(db, log),
		ChatConversation: repos.NewChatConversationRepo(db, log),
		ChatMessage:      repos.NewChatMessageRepo(db, log),
		UserSettings:     repos.NewUserSettingsRepo(db, log),
	}
}
