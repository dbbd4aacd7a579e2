package calendar

import (
	"sort"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
)

type DayEntry struct {
	DayNumber  int                  `json:"day_number"`
	Date       string               `json:"date"`
	Weekday    schedule.Weekday     `json:"weekday"`
	Descriptor *types.DayDescriptor `json:"descriptor,omitempty"`
	Task       *types.PlanTask      `json:"task,omitempty"`
	Visible    bool                 `json:"visible"`
	IsToday    bool                 `json:"is_today"`
}

type PlanView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Duration    int       `json:"duration"`
	PostingDays []string  `json:"posting_days"`
	// WeekOfMonth is set for weekly plans only.
	WeekOfMonth int `json:"week_of_month,omitempty"`

	Completed int        `json:"completed"`
	Total     int        `json:"total"`
	Progress  int        `json:"progress"`
	Days      []DayEntry `json:"days"`
}

type Month struct {
	Key   string     `json:"key"`
	Year  int        `json:"year"`
	Month int        `json:"month"`
	Label string     `json:"label"`
	Plans []PlanView `json:"plans"`
}

type View struct {
	Filter    []string `json:"posting_days"`
	Completed int      `json:"completed"`
	Total     int      `json:"total"`
	Progress  int      `json:"progress"`
	Months    []Month  `json:"months"`
}

// ShouldShowDay reports whether dayNumber of p falls on a weekday in filter.
func ShouldShowDay(p *types.ContentPlan, dayNumber int, filter schedule.Set) bool {
	return schedule.IsPostingDay(p.StartDate, dayNumber, filter)
}

// Progress is round(100*completed/total), 0 when total is 0.
func Progress(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 100
	}
	return (200*completed + total) / (2 * total)
}

// Build derives the calendar. An empty filter shows each plan's own posting
// days. Only tasks on visible days count toward progress.
func Build(plans []*types.ContentPlan, tasks []*types.PlanTask, filter schedule.Set, today time.Time) View {
	today = schedule.DateOnly(today)

	byPlan := map[uuid.UUID]map[int]*types.PlanTask{}
	for _, t := range tasks {
		if t == nil {
			continue
		}
		if byPlan[t.PlanID] == nil {
			byPlan[t.PlanID] = map[int]*types.PlanTask{}
		}
		byPlan[t.PlanID][t.DayNumber] = t
	}

	sorted := make([]*types.ContentPlan, 0, len(plans))
	for _, p := range plans {
		if p != nil {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	view := View{Months: []Month{}, Filter: []string{}}
	if len(filter) > 0 {
		view.Filter = filter.Strings()
	}
	for _, p := range sorted {
		show := filter
		if len(show) == 0 {
			show = schedule.SetFromStored(p.PostingDays)
		}
		pv := buildPlan(p, byPlan[p.ID], show, today)
		view.Completed += pv.Completed
		view.Total += pv.Total

		start := schedule.DateOnly(p.StartDate)
		key := start.Format("2006-01")
		if n := len(view.Months); n == 0 || view.Months[n-1].Key != key {
			view.Months = append(view.Months, Month{
				Key:   key,
				Year:  start.Year(),
				Month: int(start.Month()),
				Label: start.Format("January 2006"),
				Plans: []PlanView{},
			})
		}
		last := &view.Months[len(view.Months)-1]
		last.Plans = append(last.Plans, pv)
	}
	view.Progress = Progress(view.Completed, view.Total)
	return view
}

func buildPlan(p *types.ContentPlan, tasks map[int]*types.PlanTask, show schedule.Set, today time.Time) PlanView {
	start := schedule.DateOnly(p.StartDate)
	pv := PlanView{
		ID:          p.ID,
		Title:       p.Title,
		StartDate:   start.Format(time.DateOnly),
		EndDate:     schedule.DayDate(start, p.Duration).Format(time.DateOnly),
		Duration:    p.Duration,
		PostingDays: schedule.SetFromStored(p.PostingDays).Strings(),
		Days:        make([]DayEntry, 0, p.Duration),
	}
	if p.Duration <= types.DurationWeek {
		pv.WeekOfMonth = schedule.WeekOfMonth(start)
	}
	for n := 1; n <= p.Duration; n++ {
		date := schedule.DayDate(start, n)
		entry := DayEntry{
			DayNumber: n,
			Date:      date.Format(time.DateOnly),
			Weekday:   schedule.WeekdayOf(date),
			Task:      tasks[n],
			Visible:   ShouldShowDay(p, n, show),
			IsToday:   date.Equal(today),
		}
		if d, ok := p.Descriptor(n); ok {
			entry.Descriptor = &d
		}
		if entry.Visible && entry.Task != nil {
			pv.Total++
			if entry.Task.Completed {
				pv.Completed++
			}
		}
		pv.Days = append(pv.Days, entry)
	}
	pv.Progress = Progress(pv.Completed, pv.Total)
	return pv
}
