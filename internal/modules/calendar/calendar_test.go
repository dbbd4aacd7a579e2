package calendar

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func weeklyPlan(start time.Time, days ...string) *types.ContentPlan {
	p := &types.ContentPlan{
		ID:          uuid.New(),
		Title:       "week",
		StartDate:   start,
		Duration:    types.DurationWeek,
		PostingDays: days,
	}
	for n := 1; n <= p.Duration; n++ {
		p.Plan = append(p.Plan, types.DayDescriptor{DayNumber: n, Task: "post", TimeEstimate: "30m", Tip: "go"})
	}
	return p
}

func tasksFor(p *types.ContentPlan, completed map[int]bool, days ...int) []*types.PlanTask {
	out := []*types.PlanTask{}
	for _, n := range days {
		d, _ := p.Descriptor(n)
		t := types.NewDefaultTask(p, d)
		t.Completed = completed[n]
		out = append(out, t)
	}
	return out
}

func TestProgressBounds(t *testing.T) {
	cases := []struct{ c, total, want int }{
		{0, 0, 0},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{3, 3, 100},
		{5, 3, 100},
		{-1, 3, 0},
	}
	for _, tc := range cases {
		got := Progress(tc.c, tc.total)
		assert.Equal(t, tc.want, got, "%d/%d", tc.c, tc.total)
		assert.GreaterOrEqual(t, got, 0)
		assert.LessOrEqual(t, got, 100)
	}
}

func TestShouldShowDay(t *testing.T) {
	p := weeklyPlan(date(2025, 1, 6), "monday")
	f := schedule.NewSet(schedule.Monday, schedule.Wednesday)
	assert.True(t, ShouldShowDay(p, 1, f))
	assert.False(t, ShouldShowDay(p, 2, f))
	assert.True(t, ShouldShowDay(p, 3, f))
	assert.False(t, ShouldShowDay(p, 7, f))
}

func TestBuildCountsOnlyVisibleTasks(t *testing.T) {
	p := weeklyPlan(date(2025, 1, 6), "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday")
	tasks := tasksFor(p, map[int]bool{1: true, 2: true, 5: true}, 1, 2, 3, 4, 5, 6, 7)

	v := Build([]*types.ContentPlan{p}, tasks, schedule.NewSet(schedule.Monday, schedule.Wednesday, schedule.Friday), date(2025, 1, 8))
	require.Len(t, v.Months, 1)
	pv := v.Months[0].Plans[0]

	// visible: mon(1, done), wed(3), fri(5, done)
	assert.Equal(t, 3, pv.Total)
	assert.Equal(t, 2, pv.Completed)
	assert.Equal(t, 67, pv.Progress)
	assert.Equal(t, 67, v.Progress)
	assert.Len(t, pv.Days, 7)
	assert.True(t, pv.Days[2].IsToday)
	assert.False(t, pv.Days[1].Visible)
	assert.Equal(t, schedule.Wednesday, pv.Days[2].Weekday)
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, v.Filter)
}

func TestBuildWithoutVisibleTasksIsZero(t *testing.T) {
	p := weeklyPlan(date(2025, 1, 6), "monday")
	tasks := tasksFor(p, map[int]bool{1: true}, 1)

	v := Build([]*types.ContentPlan{p}, tasks, schedule.NewSet(schedule.Sunday), date(2025, 1, 6))
	assert.Equal(t, 0, v.Total)
	assert.Equal(t, 0, v.Progress)
}

func TestBuildEmptyFilterUsesPlanDays(t *testing.T) {
	p := weeklyPlan(date(2025, 1, 6), "tuesday")
	tasks := tasksFor(p, map[int]bool{2: true}, 2)

	v := Build([]*types.ContentPlan{p}, tasks, nil, date(2025, 1, 1))
	pv := v.Months[0].Plans[0]
	assert.Equal(t, 1, pv.Total)
	assert.Equal(t, 100, pv.Progress)
	assert.True(t, pv.Days[1].Visible)
	assert.False(t, pv.Days[0].Visible)
}

func TestBuildGroupsByMonth(t *testing.T) {
	feb := weeklyPlan(date(2025, 2, 3), "monday")
	jan2 := weeklyPlan(date(2025, 1, 13), "monday")
	jan1 := weeklyPlan(date(2025, 1, 6), "monday")
	month := &types.ContentPlan{ID: uuid.New(), StartDate: date(2025, 1, 20), Duration: types.DurationMonth, PostingDays: []string{"monday"}}

	v := Build([]*types.ContentPlan{feb, jan2, month, jan1}, nil, nil, date(2025, 1, 1))
	require.Len(t, v.Months, 2)

	assert.Equal(t, "2025-01", v.Months[0].Key)
	assert.Equal(t, "January 2025", v.Months[0].Label)
	require.Len(t, v.Months[0].Plans, 3)
	assert.Equal(t, jan1.ID, v.Months[0].Plans[0].ID)
	assert.Equal(t, 1, v.Months[0].Plans[0].WeekOfMonth)
	assert.Equal(t, jan2.ID, v.Months[0].Plans[1].ID)
	assert.Equal(t, 2, v.Months[0].Plans[1].WeekOfMonth)
	assert.Equal(t, month.ID, v.Months[0].Plans[2].ID)
	assert.Zero(t, v.Months[0].Plans[2].WeekOfMonth)
	assert.Nil(t, v.Months[0].Plans[2].Days[0].Descriptor)

	assert.Equal(t, "2025-02", v.Months[1].Key)
	assert.Equal(t, feb.ID, v.Months[1].Plans[0].ID)
}
