package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	"github.com/yungbote/creatorcoach-backend/internal/modules/calendar"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type CalendarService interface {
	// Get builds the calendar. An empty filter falls back to the user's
	// posting-day preference, then to each plan's own days.
	Get(ctx context.Context, userID uuid.UUID, filter []string) (*calendar.View, error)
}

type calendarService struct {
	log          *logger.Logger
	planRepo     repos.ContentPlanRepo
	taskRepo     repos.PlanTaskRepo
	settingsRepo repos.UserSettingsRepo
	now          func() time.Time
}

func NewCalendarService(log *logger.Logger, planRepo repos.ContentPlanRepo, taskRepo repos.PlanTaskRepo, settingsRepo repos.UserSettingsRepo) CalendarService {
	return &calendarService{
		log:          log.With("service", "CalendarService"),
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

func (cs *calendarService) Get(ctx context.Context, userID uuid.UUID, filter []string) (*calendar.View, error) {
	dbc := dbctx.Context{Ctx: ctx}

	set, err := schedule.ParseSet(filter)
	if err != nil {
		return nil, apierr.BadRequest("posting_days: %s", err.Error())
	}
	loc := time.UTC
	st, err := cs.settingsRepo.Get(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load settings: %w", err))
	}
	if st != nil {
		if len(set) == 0 {
			set = schedule.SetFromStored(st.PostingDays)
		}
		if l, err := time.LoadLocation(st.Timezone); err == nil {
			loc = l
		}
	}

	plans, err := cs.planRepo.ListByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list plans: %w", err))
	}
	tasks, err := cs.taskRepo.ListByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list tasks: %w", err))
	}
	view := calendar.Build(plans, tasks, set, cs.now().In(loc))
	return &view, nil
}
