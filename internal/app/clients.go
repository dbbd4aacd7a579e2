package app

import (
	"fmt"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/yungbote/creatorcoach-backend/internal/platform/envutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/openai"
	"github.com/yungbote/creatorcoach-backend/internal/platform/redis"
	"github.com/yungbote/creatorcoach-backend/internal/platform/sendgrid"
	"github.com/yungbote/creatorcoach-backend/internal/platform/twilio"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx"
)

// Clients holds the external providers. Optional providers are nil when
// their credentials are absent; the features that need them answer 503.
type Clients struct {
	OpenAI   openai.Client
	SendGrid sendgrid.Client
	Twilio   twilio.Client
	Claims   redis.Claims
	Temporal temporalsdkclient.Client
}

func wireClients(log *logger.Logger, withTemporal bool) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	claims, err := redis.NewClaimsFromEnv(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis claims: %w", err)
	}
	out.Claims = claims

	if envutil.String("OPENAI_API_KEY", "") != "" {
		c, err := openai.NewFromEnv(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init openai client: %w", err)
		}
		out.OpenAI = c
	} else {
		log.Warn("OPENAI_API_KEY not set; generation and chat disabled")
	}

	if envutil.String("SENDGRID_API_KEY", "") != "" {
		c, err := sendgrid.NewFromEnv(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init sendgrid client: %w", err)
		}
		out.SendGrid = c
	} else {
		log.Warn("SENDGRID_API_KEY not set; email reminders disabled")
	}

	if envutil.String("TWILIO_ACCOUNT_SID", "") != "" {
		c, err := twilio.NewFromEnv(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init twilio client: %w", err)
		}
		out.Twilio = c
	} else {
		log.Warn("TWILIO_ACCOUNT_SID not set; sms reminders disabled")
	}

	if withTemporal {
		tc, err := temporalx.NewClient(log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init temporal client: %w", err)
		}
		out.Temporal = tc
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
	if c.Claims != nil {
		_ = c.Claims.Close()
	}
}
