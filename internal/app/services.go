package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/sendgrid"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type Services struct {
	Auth            services.AuthService
	Quiz            services.QuizService
	PlanGeneration  services.PlanGenerationService
	Plan            services.PlanService
	PostingSchedule services.PostingScheduleService
	Task            services.TaskService
	Calendar        services.CalendarService
	Settings        services.SettingsService
	Ideas           services.IdeasService
	Chat            services.ChatService
	Notifications   services.NotificationScheduler
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	catalog, err := quiz.Default()
	if err != nil {
		return Services{}, fmt.Errorf("load quiz catalog: %w", err)
	}
	tx := dbctx.NewTransactor(db)

	var auth services.AuthService
	if cfg.JWTSecret != "" {
		auth, err = services.NewAuthService(log, services.AuthConfig{
			JWTSecret: cfg.JWTSecret,
			Issuer:    cfg.JWTIssuer,
			Audience:  cfg.JWTAudience,
			Leeway:    cfg.JWTLeeway,
		})
		if err != nil {
			return Services{}, fmt.Errorf("init auth service: %w", err)
		}
	}

	sgCfg := sendgrid.ConfigFromEnv()
	notifications := services.NewNotificationScheduler(
		log,
		services.NotificationConfig{
			Tolerance:   cfg.NotifyTolerance,
			Concurrency: cfg.NotifyConcurrency,
			ClaimTTL:    cfg.NotifyClaimTTL,
		},
		clients.Claims,
		repos.UserSettings,
		repos.ContentPlan,
		repos.PlanTask,
		services.NewEmailSender(clients.SendGrid, sendgrid.EmailAddress{Email: sgCfg.DefaultFromEmail, Name: sgCfg.DefaultFromName}, cfg.AppURL),
		services.NewSMSSender(clients.Twilio),
	)

	return Services{
		Auth:            auth,
		Quiz:            services.NewQuizService(log, catalog, repos.QuizResponse),
		PlanGeneration:  services.NewPlanGenerationService(log, tx, catalog, clients.OpenAI, repos.QuizResponse, repos.ContentPlan, repos.PlanTask, repos.UserSettings),
		Plan:            services.NewPlanService(log, tx, repos.ContentPlan, repos.PlanTask),
		PostingSchedule: services.NewPostingScheduleService(log, tx, repos.ContentPlan, repos.PlanTask, repos.UserSettings),
		Task:            services.NewTaskService(log, repos.PlanTask, cfg.AutosaveFlush),
		Calendar:        services.NewCalendarService(log, repos.ContentPlan, repos.PlanTask, repos.UserSettings),
		Settings:        services.NewSettingsService(log, repos.UserSettings),
		Ideas:           services.NewIdeasService(log, catalog, clients.OpenAI, repos.QuizResponse, repos.GeneratedIdeas),
		Chat:            services.NewChatService(log, tx, clients.OpenAI, repos.ChatConversation, repos.ChatMessage, repos.QuizResponse),
		Notifications:   notifications,
	}, nil
}
