package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/creatorcoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/creatorcoach-backend/internal/http/middleware"
	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	Metrics        *observability.Metrics
	CORSOrigins    []string
	CronSecret     string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	QuizHandler     *httpH.QuizHandler
	PlanHandler     *httpH.PlanHandler
	TaskHandler     *httpH.TaskHandler
	SettingsHandler *httpH.SettingsHandler
	CalendarHandler *httpH.CalendarHandler
	IdeasHandler    *httpH.IdeasHandler
	ChatHandler     *httpH.ChatHandler
	CronHandler     *httpH.CronHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", cfg.Metrics.Handler())
	}

	api := r.Group("/api")

	// Quiz (public; a signed-in taker owns the response immediately)
	if cfg.QuizHandler != nil {
		api.GET("/quiz", cfg.QuizHandler.GetCatalog)
		public := api.Group("/")
		if cfg.AuthMiddleware != nil {
			public.Use(cfg.AuthMiddleware.OptionalAuth())
		}
		public.POST("/quiz/responses", cfg.QuizHandler.Submit)
	}

	// Scheduler triggers
	if cfg.CronHandler != nil {
		cron := api.Group("/cron")
		cron.Use(httpMW.RequireCronSecret(cfg.CronSecret))
		cron.POST("/notifications/:channel", cfg.CronHandler.RunNotifications)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.QuizHandler != nil {
			protected.GET("/quiz/responses/latest", cfg.QuizHandler.Latest)
			protected.POST("/quiz/responses/:id/claim", cfg.QuizHandler.Claim)
		}

		// Plans
		if cfg.PlanHandler != nil {
			protected.POST("/plans/generate", cfg.PlanHandler.Generate)
			protected.GET("/plans", cfg.PlanHandler.List)
			protected.GET("/plans/:id", cfg.PlanHandler.Get)
			protected.DELETE("/plans/:id", cfg.PlanHandler.Delete)
		}

		// Tasks
		if cfg.TaskHandler != nil {
			protected.PATCH("/tasks/:id", cfg.TaskHandler.Update)
			protected.PATCH("/tasks/:id/notes", cfg.TaskHandler.UpdateNotes)
		}

		// Settings
		if cfg.SettingsHandler != nil {
			protected.GET("/settings", cfg.SettingsHandler.Get)
			protected.PUT("/settings/posting-days", cfg.SettingsHandler.UpdatePostingDays)
			protected.PUT("/settings/notifications", cfg.SettingsHandler.UpdateNotifications)
		}

		if cfg.CalendarHandler != nil {
			protected.GET("/calendar", cfg.CalendarHandler.Get)
		}

		// Ideas
		if cfg.IdeasHandler != nil {
			protected.POST("/ideas/generate", cfg.IdeasHandler.Generate)
			protected.GET("/ideas", cfg.IdeasHandler.List)
			protected.PATCH("/ideas/:id", cfg.IdeasHandler.SetFlags)
		}

		// Chat
		if cfg.ChatHandler != nil {
			protected.POST("/chat/conversations", cfg.ChatHandler.CreateConversation)
			protected.GET("/chat/conversations", cfg.ChatHandler.ListConversations)
			protected.GET("/chat/conversations/:id/messages", cfg.ChatHandler.ListMessages)
			protected.POST("/chat/conversations/:id/messages", cfg.ChatHandler.SendMessage)
		}
	}

	return r
}
