package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/yungbote/creatorcoach-backend/internal/app"
	"github.com/yungbote/creatorcoach-backend/internal/services"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx/notifysweep"
)

// sweepDetail is the EventBridge rule input. An empty channel list sweeps
// every channel.
type sweepDetail struct {
	Channels []string `json:"channels"`
}

type sweepResponse struct {
	Summaries []*services.NotificationSummary `json:"summaries"`
}

var (
	appOnce sync.Once
	theApp  *app.App
	appErr  error
)

func getApp(ctx context.Context) (*app.App, error) {
	appOnce.Do(func() {
		theApp, appErr = app.New(ctx, app.Options{})
	})
	return theApp, appErr
}

func handler(ctx context.Context, event events.CloudWatchEvent) (sweepResponse, error) {
	a, err := getApp(ctx)
	if err != nil {
		return sweepResponse{}, fmt.Errorf("init app: %w", err)
	}

	var detail sweepDetail
	if len(event.Detail) > 0 {
		if err := json.Unmarshal(event.Detail, &detail); err != nil {
			return sweepResponse{}, fmt.Errorf("invalid event detail: %w", err)
		}
	}
	channels := detail.Channels
	if len(channels) == 0 {
		channels = notifysweep.DefaultChannels()
	}

	now := event.Time
	if now.IsZero() {
		now = time.Now()
	}

	out := sweepResponse{Summaries: []*services.NotificationSummary{}}
	var errs []error
	for _, ch := range channels {
		summary, err := a.Services.Notifications.Run(ctx, ch, now)
		if err != nil {
			a.Log.Error("sweep failed", "channel", ch, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", ch, err))
			continue
		}
		out.Summaries = append(out.Summaries, summary)
	}
	return out, errors.Join(errs...)
}

func main() {
	if _, err := getApp(context.Background()); err != nil {
		fmt.Printf("Error initializing app: %v\n", err)
		os.Exit(1)
	}
	lambda.Start(handler)
}
