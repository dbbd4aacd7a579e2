package domain

import (
	"github.com/yungbote/creatorcoach-backend/internal/domain/chat"
	"github.com/yungbote/creatorcoach-backend/internal/domain/ideas"
	"github.com/yungbote/creatorcoach-backend/internal/domain/plan"
	"github.com/yungbote/creatorcoach-backend/internal/domain/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/domain/settings"
)

const (
	ChannelEmail = settings.ChannelEmail
	ChannelSMS   = settings.ChannelSMS

	RoleUser      = chat.RoleUser
	RoleAssistant = chat.RoleAssistant

	DurationWeek  = plan.DurationWeek
	DurationMonth = plan.DurationMonth
)

type QuizAnswer = quiz.Answer
type QuizResponse = quiz.QuizResponse

type ContentPlan = plan.ContentPlan
type DayDescriptor = plan.DayDescriptor
type PlanTask = plan.PlanTask

type Idea = ideas.Idea
type GeneratedIdeas = ideas.GeneratedIdeas

type ChatConversation = chat.ChatConversation
type ChatMessage = chat.ChatMessage

type UserSettings = settings.UserSettings

var NewDefaultTask = plan.NewDefaultTask

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&QuizResponse{},
		&ContentPlan{},
		&PlanTask{},
		&GeneratedIdeas{},
		&ChatConversation{},
		&ChatMessage{},
		&UserSettings{},
	}
}
