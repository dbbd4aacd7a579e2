package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/creatorcoach-backend/internal/app"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx/temporalworker"
)

var ensureCron bool

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run the Temporal worker that executes scheduled sweeps",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().BoolVar(&ensureCron, "ensure-cron", true, "start the sweep cron workflow if it is not running")
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, app.Options{Temporal: true})
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	if a.Clients.Temporal == nil {
		return fmt.Errorf("TEMPORAL_ADDRESS is required for the worker")
	}
	runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Services.Notifications)
	if err != nil {
		return err
	}
	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	if ensureCron {
		if err := temporalworker.EnsureSweepCron(ctx, a.Clients.Temporal, a.Log); err != nil {
			return err
		}
	}

	<-ctx.Done()
	a.Log.Info("Worker stopping")
	return nil
}
