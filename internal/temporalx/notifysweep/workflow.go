package notifysweep

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// Workflow runs one sweep per channel. A failed channel does not stop the
// others; it is reported in its result and the run still succeeds so the
// next cron tick fires normally.
func Workflow(ctx workflow.Context, in SweepInput) ([]SweepResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 4 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 3,
		},
	})

	channels := in.Channels
	if len(channels) == 0 {
		channels = DefaultChannels()
	}

	futures := make([]workflow.Future, len(channels))
	for i, ch := range channels {
		futures[i] = workflow.ExecuteActivity(ctx, ActivitySweep, ch)
	}

	out := make([]SweepResult, 0, len(channels))
	for i, f := range futures {
		var res SweepResult
		if err := f.Get(ctx, &res); err != nil {
			workflow.GetLogger(ctx).Warn("notification sweep failed", "channel", channels[i], "error", err)
			res = SweepResult{Channel: channels[i], Failed: err.Error()}
		}
		out = append(out, res)
	}
	return out, nil
}
