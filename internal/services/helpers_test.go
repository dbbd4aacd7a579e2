package services

import (
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

var testLog = logger.Nop()

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedPlan stores a plan with a descriptor for every day and a task for every
// posting day.
func seedPlan(s *memStore, userID uuid.UUID, start time.Time, duration int, days ...string) *types.ContentPlan {
	p := &types.ContentPlan{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       "seed",
		StartDate:   start,
		Duration:    duration,
		PostingDays: days,
	}
	for n := 1; n <= duration; n++ {
		p.Plan = append(p.Plan, types.DayDescriptor{DayNumber: n, Task: "task", TimeEstimate: "20 min", Tip: "tip"})
	}
	s.plans[p.ID] = p
	set := schedule.SetFromStored(days)
	for _, d := range p.Plan {
		if schedule.IsPostingDay(start, d.DayNumber, set) {
			t := types.NewDefaultTask(p, d)
			s.tasks[t.ID] = t
		}
	}
	c := *p
	return &c
}

func dayNumbers(tasks []types.PlanTask) []int {
	out := make([]int, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.DayNumber)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func uuidPtr(id uuid.UUID) *uuid.UUID { return &id }
