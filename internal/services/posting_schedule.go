package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

// PlanReconciliation is the outcome for one plan.
type PlanReconciliation struct {
	PlanID       uuid.UUID `json:"plan_id"`
	DaysAdded    []string  `json:"days_added"`
	DaysRemoved  []string  `json:"days_removed"`
	TasksCreated int       `json:"tasks_created"`
	TasksDeleted int       `json:"tasks_deleted"`
	OK           bool      `json:"ok"`
	Error        string    `json:"error,omitempty"`
}

type ReconcileReport struct {
	PostingDays []string             `json:"posting_days"`
	Plans       []PlanReconciliation `json:"plans"`
}

// Failed lists the plans whose reconciliation rolled back.
func (r *ReconcileReport) Failed() []uuid.UUID {
	out := []uuid.UUID{}
	for _, p := range r.Plans {
		if !p.OK {
			out = append(out, p.PlanID)
		}
	}
	return out
}

type PostingScheduleService interface {
	// UpdatePostingDays stores days as the user's preference and reconciles
	// every plan the user owns. The report is returned even when some plans
	// fail; the error then names them.
	UpdatePostingDays(ctx context.Context, userID uuid.UUID, days []string) (*ReconcileReport, error)
}

type postingScheduleService struct {
	log          *logger.Logger
	tx           dbctx.Transactor
	planRepo     repos.ContentPlanRepo
	taskRepo     repos.PlanTaskRepo
	settingsRepo repos.UserSettingsRepo
}

func NewPostingScheduleService(
	log *logger.Logger,
	tx dbctx.Transactor,
	planRepo repos.ContentPlanRepo,
	taskRepo repos.PlanTaskRepo,
	settingsRepo repos.UserSettingsRepo,
) PostingScheduleService {
	return &postingScheduleService{
		log:          log.With("service", "PostingScheduleService"),
		tx:           tx,
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
	}
}

func (s *postingScheduleService) UpdatePostingDays(ctx context.Context, userID uuid.UUID, days []string) (*ReconcileReport, error) {
	normalized, err := schedule.NormalizeDays(days)
	if err != nil {
		return nil, apierr.BadRequest("posting_days: %s", err.Error())
	}
	dbc := dbctx.Context{Ctx: ctx}

	if _, err := s.settingsRepo.Upsert(dbc, &types.UserSettings{UserID: userID, PostingDays: normalized}, "posting_days"); err != nil {
		return nil, apierr.Internal(fmt.Errorf("store posting days: %w", err))
	}

	plans, err := s.planRepo.ListByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list plans: %w", err))
	}

	next := schedule.SetFromStored(normalized)
	report := &ReconcileReport{PostingDays: normalized, Plans: make([]PlanReconciliation, 0, len(plans))}
	var errs []error
	for _, p := range plans {
		res, err := s.reconcilePlan(ctx, userID, p.ID, next)
		if err != nil {
			res.OK = false
			res.Error = err.Error()
			errs = append(errs, fmt.Errorf("plan %s: %w", p.ID, err))
			observability.Current().ObserveReconciliation("error", 0, 0)
			s.log.Warn("plan reconciliation failed", "user_id", userID, "plan_id", p.ID, "error", err)
		} else {
			observability.Current().ObserveReconciliation("ok", res.TasksCreated, res.TasksDeleted)
		}
		report.Plans = append(report.Plans, res)
	}

	if failed := report.Failed(); len(failed) > 0 {
		ids := make([]string, len(failed))
		for i, id := range failed {
			ids[i] = id.String()
		}
		return report, apierr.Internal(fmt.Errorf("reconcile failed for plans %s: %w", strings.Join(ids, ", "), errors.Join(errs...)))
	}
	s.log.Info("posting days updated", "user_id", userID, "days", normalized, "plans", len(plans))
	return report, nil
}

// reconcilePlan brings one plan's tasks in line with next inside its own
// transaction. Missing tasks are computed from actual rows, so a rerun after
// a failure converges.
func (s *postingScheduleService) reconcilePlan(ctx context.Context, userID uuid.UUID, planID uuid.UUID, next schedule.Set) (PlanReconciliation, error) {
	res := PlanReconciliation{PlanID: planID, DaysAdded: []string{}, DaysRemoved: []string{}}
	var staged PlanReconciliation
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		staged = res
		plan, err := s.planRepo.LockByID(dbc, userID, planID)
		if err != nil {
			return fmt.Errorf("lock plan: %w", err)
		}
		if plan == nil {
			return fmt.Errorf("plan %s not found", planID)
		}
		prev := schedule.SetFromStored(plan.PostingDays)
		staged.DaysAdded = next.Minus(prev).Strings()
		staged.DaysRemoved = prev.Minus(next).Strings()

		tasks, err := s.taskRepo.ListByPlanIDs(dbc, []uuid.UUID{plan.ID})
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		have := make(map[int]bool, len(tasks))
		var stale []uuid.UUID
		for _, t := range tasks {
			if schedule.IsPostingDay(plan.StartDate, t.DayNumber, next) {
				have[t.DayNumber] = true
				continue
			}
			stale = append(stale, t.ID)
		}

		var missing []*types.PlanTask
		for _, d := range plan.Plan {
			if have[d.DayNumber] || !schedule.IsPostingDay(plan.StartDate, d.DayNumber, next) {
				continue
			}
			missing = append(missing, types.NewDefaultTask(plan, d))
			have[d.DayNumber] = true
		}

		if _, err := s.taskRepo.Create(dbc, missing); err != nil {
			return fmt.Errorf("create tasks: %w", err)
		}
		deleted, err := s.taskRepo.DeleteByIDs(dbc, stale)
		if err != nil {
			return fmt.Errorf("delete tasks: %w", err)
		}
		if err := s.planRepo.UpdatePostingDays(dbc, plan.ID, next.Strings()); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		staged.TasksCreated = len(missing)
		staged.TasksDeleted = int(deleted)
		return nil
	})
	if err != nil {
		return res, err
	}
	staged.OK = true
	return staged, nil
}
