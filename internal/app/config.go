package app

import (
	"time"

	"github.com/yungbote/creatorcoach-backend/internal/platform/envutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	ServiceName string
	Environment string
	Version     string
	AppURL      string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string
	JWTLeeway   time.Duration

	CronSecret  string
	CORSOrigins []string

	NotifyTolerance   time.Duration
	NotifyConcurrency int
	NotifyClaimTTL    time.Duration
	AutosaveFlush     time.Duration

	ShutdownTimeout time.Duration
	AutoMigrate     bool
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:        envutil.String("PORT", "8080"),
		ServiceName: envutil.String("SERVICE_NAME", "creatorcoach-api"),
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
		AppURL:      envutil.String("APP_URL", "http://localhost:3000"),

		JWTSecret:   envutil.String("JWT_SECRET", ""),
		JWTIssuer:   envutil.String("JWT_ISSUER", ""),
		JWTAudience: envutil.String("JWT_AUDIENCE", "authenticated"),
		JWTLeeway:   envutil.Duration("JWT_LEEWAY_SECONDS", 30*time.Second, time.Second),

		CronSecret:  envutil.String("CRON_SECRET", ""),
		CORSOrigins: envutil.List("CORS_ALLOWED_ORIGINS"),

		NotifyTolerance:   envutil.Duration("NOTIFY_TOLERANCE_MINUTES", 5*time.Minute, time.Minute),
		NotifyConcurrency: envutil.Int("NOTIFY_CONCURRENCY", 8),
		NotifyClaimTTL:    envutil.Duration("NOTIFY_CLAIM_TTL_HOURS", 36*time.Hour, time.Hour),
		AutosaveFlush:     envutil.Duration("AUTOSAVE_FLUSH_MS", time.Second, time.Millisecond),

		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT_SECONDS", 20*time.Second, time.Second),
		AutoMigrate:     envutil.Bool("POSTGRES_AUTO_MIGRATE", true),
	}
	if cfg.CronSecret == "" && log != nil {
		log.Warn("CRON_SECRET not set; scheduler endpoints will refuse every request")
	}
	return cfg
}
