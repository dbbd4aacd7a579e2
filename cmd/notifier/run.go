package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/creatorcoach-backend/internal/app"
	"github.com/yungbote/creatorcoach-backend/internal/services"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx/notifysweep"
)

var (
	runChannels []string
	runAt       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reminder sweep and print the summary",
	RunE:  runSweep,
}

func init() {
	runCmd.Flags().StringSliceVar(&runChannels, "channel", notifysweep.DefaultChannels(), "channels to sweep (email, sms)")
	runCmd.Flags().StringVar(&runAt, "at", "", "evaluate as of this RFC3339 instant instead of now")
}

func runSweep(cmd *cobra.Command, args []string) error {
	now := time.Now()
	if runAt != "" {
		t, err := time.Parse(time.RFC3339, runAt)
		if err != nil {
			return fmt.Errorf("--at: %w", err)
		}
		now = t
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	summaries := make([]*services.NotificationSummary, 0, len(runChannels))
	var firstErr error
	for _, ch := range runChannels {
		summary, err := a.Services.Notifications.Run(ctx, ch, now)
		if err != nil {
			a.Log.Error("sweep failed", "channel", ch, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		summaries = append(summaries, summary)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		return err
	}
	return firstErr
}
