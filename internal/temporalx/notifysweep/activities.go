package notifysweep

import (
	"context"
	"time"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type Activities struct {
	Scheduler services.NotificationScheduler
	Now       func() time.Time
}

func DefaultChannels() []string {
	return []string{types.ChannelEmail, types.ChannelSMS}
}

func (a *Activities) Sweep(ctx context.Context, channel string) (SweepResult, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	summary, err := a.Scheduler.Run(ctx, channel, now())
	if err != nil {
		return SweepResult{}, err
	}
	return SweepResult{
		Channel: summary.Channel,
		Sent:    summary.Sent,
		Skipped: summary.Skipped,
		Errors:  summary.Errors,
	}, nil
}
