package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type PlanService interface {
	List(ctx context.Context, userID uuid.UUID) ([]*types.ContentPlan, error)
	Get(ctx context.Context, userID uuid.UUID, planID uuid.UUID) (*PlanWithTasks, error)
	// Delete removes the plan and its tasks in one transaction.
	Delete(ctx context.Context, userID uuid.UUID, planID uuid.UUID) error
}

type planService struct {
	log      *logger.Logger
	tx       dbctx.Transactor
	planRepo repos.ContentPlanRepo
	taskRepo repos.PlanTaskRepo
}

func NewPlanService(log *logger.Logger, tx dbctx.Transactor, planRepo repos.ContentPlanRepo, taskRepo repos.PlanTaskRepo) PlanService {
	return &planService{
		log:      log.With("service", "PlanService"),
		tx:       tx,
		planRepo: planRepo,
		taskRepo: taskRepo,
	}
}

func (ps *planService) List(ctx context.Context, userID uuid.UUID) ([]*types.ContentPlan, error) {
	plans, err := ps.planRepo.ListByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list plans: %w", err))
	}
	return plans, nil
}

func (ps *planService) Get(ctx context.Context, userID uuid.UUID, planID uuid.UUID) (*PlanWithTasks, error) {
	dbc := dbctx.Context{Ctx: ctx}
	plan, err := ps.planRepo.GetByID(dbc, userID, planID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load plan: %w", err))
	}
	if plan == nil {
		return nil, apierr.NotFound("plan")
	}
	tasks, err := ps.taskRepo.ListByPlanIDs(dbc, []uuid.UUID{plan.ID})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list tasks: %w", err))
	}
	return &PlanWithTasks{Plan: plan, Tasks: tasks}, nil
}

func (ps *planService) Delete(ctx context.Context, userID uuid.UUID, planID uuid.UUID) error {
	err := ps.tx.InTx(ctx, func(dbc dbctx.Context) error {
		plan, err := ps.planRepo.GetByID(dbc, userID, planID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("load plan: %w", err))
		}
		if plan == nil {
			return apierr.NotFound("plan")
		}
		if _, err := ps.taskRepo.DeleteByPlanID(dbc, plan.ID); err != nil {
			return apierr.Internal(fmt.Errorf("delete tasks: %w", err))
		}
		if _, err := ps.planRepo.Delete(dbc, userID, plan.ID); err != nil {
			return apierr.Internal(fmt.Errorf("delete plan: %w", err))
		}
		return nil
	})
	if err != nil {
		return err
	}
	ps.log.Info("plan deleted", "user_id", userID, "plan_id", planID)
	return nil
}
