package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http"
	httpH "github.com/yungbote/creatorcoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/creatorcoach-backend/internal/http/middleware"
	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health   *httpH.HealthHandler
	Quiz     *httpH.QuizHandler
	Plan     *httpH.PlanHandler
	Task     *httpH.TaskHandler
	Settings *httpH.SettingsHandler
	Calendar *httpH.CalendarHandler
	Ideas    *httpH.IdeasHandler
	Chat     *httpH.ChatHandler
	Cron     *httpH.CronHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	if services.Auth == nil {
		log.Warn("JWT_SECRET not set; authenticated routes are disabled")
		return Middleware{}
	}
	return Middleware{Auth: httpMW.NewAuthMiddleware(log, services.Auth)}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:   httpH.NewHealthHandler(),
		Quiz:     httpH.NewQuizHandler(services.Quiz),
		Plan:     httpH.NewPlanHandler(services.Plan, services.PlanGeneration),
		Task:     httpH.NewTaskHandler(services.Task),
		Settings: httpH.NewSettingsHandler(services.Settings, services.PostingSchedule),
		Calendar: httpH.NewCalendarHandler(services.Calendar),
		Ideas:    httpH.NewIdeasHandler(services.Ideas),
		Chat:     httpH.NewChatHandler(log, services.Chat),
		Cron:     httpH.NewCronHandler(services.Notifications),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	rc := http.RouterConfig{
		Log:            log,
		ServiceName:    cfg.ServiceName,
		Metrics:        metrics,
		CORSOrigins:    cfg.CORSOrigins,
		CronSecret:     cfg.CronSecret,
		AuthMiddleware: middleware.Auth,

		HealthHandler: handlers.Health,
		QuizHandler:   handlers.Quiz,
		CronHandler:   handlers.Cron,
	}
	// Without a verifier the user-scoped routes would run unauthenticated.
	if middleware.Auth != nil {
		rc.PlanHandler = handlers.Plan
		rc.TaskHandler = handlers.Task
		rc.SettingsHandler = handlers.Settings
		rc.CalendarHandler = handlers.Calendar
		rc.IdeasHandler = handlers.Ideas
		rc.ChatHandler = handlers.Chat
	}
	return http.NewRouter(rc)
}
