package temporalworker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/activity"
	temporalsdkclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/yungbote/creatorcoach-backend/internal/platform/envutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/services"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx"
	"github.com/yungbote/creatorcoach-backend/internal/temporalx/notifysweep"
)

type Runner struct {
	log *logger.Logger

	tc        temporalsdkclient.Client
	scheduler services.NotificationScheduler
}

func NewRunner(log *logger.Logger, tc temporalsdkclient.Client, scheduler services.NotificationScheduler) (*Runner, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	if scheduler == nil {
		return nil, fmt.Errorf("temporal worker missing notification scheduler")
	}
	return &Runner{log: log.With("component", "TemporalWorker"), tc: tc, scheduler: scheduler}, nil
}

// Start polls the task queue until ctx is cancelled. Startup is retried
// while the server is still coming up.
func (r *Runner) Start(ctx context.Context) error {
	cfg := temporalx.LoadConfig()
	r.log.Info("Starting Temporal worker", "address", cfg.Address, "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue)

	if envutil.Bool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false) {
		if err := temporalx.EnsureNamespace(ctx, r.tc, cfg.Namespace, r.log); err != nil {
			r.log.Warn("Temporal namespace ensure failed; worker will retry on start", "namespace", cfg.Namespace, "error", err)
		}
	}

	maxWait := envutil.Duration("TEMPORAL_WORKER_START_MAX_WAIT_SECONDS", 60*time.Second, time.Second)
	backoff := envutil.Duration("TEMPORAL_WORKER_START_BACKOFF_MS", 250*time.Millisecond, time.Millisecond)
	deadline := time.Now().Add(maxWait)

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		w := r.newWorker(cfg)
		startErr := w.Start()
		if startErr == nil {
			go func() {
				<-ctx.Done()
				w.Stop()
			}()
			r.log.Info("Temporal worker started", "namespace", cfg.Namespace, "task_queue", cfg.TaskQueue, "attempts", attempt)
			return nil
		}
		w.Stop()

		if maxWait <= 0 || time.Now().After(deadline) {
			var nfe *serviceerror.NamespaceNotFound
			if errors.As(startErr, &nfe) {
				return fmt.Errorf("temporal namespace not found (namespace=%s): %w", cfg.Namespace, startErr)
			}
			return startErr
		}
		r.log.Warn("Temporal worker failed to start; retrying", "task_queue", cfg.TaskQueue, "attempt", attempt, "error", startErr)
		time.Sleep(backoff * time.Duration(attempt))
	}
}

func (r *Runner) newWorker(cfg temporalx.Config) worker.Worker {
	concurrency := envutil.Int("WORKER_CONCURRENCY", 4)
	if concurrency < 1 {
		concurrency = 1
	}
	w := worker.New(r.tc, cfg.TaskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize:     concurrency,
		MaxConcurrentWorkflowTaskExecutionSize: concurrency,
	})
	acts := &notifysweep.Activities{Scheduler: r.scheduler}
	w.RegisterWorkflowWithOptions(notifysweep.Workflow, workflow.RegisterOptions{Name: notifysweep.WorkflowName})
	w.RegisterActivityWithOptions(acts.Sweep, activity.RegisterOptions{Name: notifysweep.ActivitySweep})
	return w
}

// EnsureSweepCron starts the cron workflow that drives reminder sweeps. An
// already running cron is left as is.
func EnsureSweepCron(ctx context.Context, tc temporalsdkclient.Client, log *logger.Logger) error {
	cfg := temporalx.LoadConfig()
	_, err := tc.ExecuteWorkflow(ctx, temporalsdkclient.StartWorkflowOptions{
		ID:                    notifysweep.CronWorkflowID,
		TaskQueue:             cfg.TaskQueue,
		CronSchedule:          cfg.SweepCron,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, notifysweep.WorkflowName, notifysweep.SweepInput{})
	var already *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &already) {
		log.Info("notification sweep cron already running", "workflow_id", notifysweep.CronWorkflowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("start notification sweep cron: %w", err)
	}
	log.Info("notification sweep cron started", "workflow_id", notifysweep.CronWorkflowID, "cron", cfg.SweepCron)
	return nil
}
