package schedule

import "time"

const (
	weekLength = 7
)

// DateOnly truncates t to midnight UTC of its calendar date in t's location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayDate returns the date of 1-based dayNumber in a span starting at start.
func DayDate(start time.Time, dayNumber int) time.Time {
	return DateOnly(start).AddDate(0, 0, dayNumber-1)
}

// DayNumberOn returns the 1-based day number of date within a span, and
// whether the date falls inside it.
func DayNumberOn(start time.Time, duration int, date time.Time) (int, bool) {
	diff := DateOnly(date).Sub(DateOnly(start))
	n := int(diff.Hours()/24) + 1
	return n, n >= 1 && n <= duration
}

// IsPostingDay reports whether dayNumber of a span falls on a day in days.
func IsPostingDay(start time.Time, dayNumber int, days Set) bool {
	return days.Has(WeekdayOf(DayDate(start, dayNumber)))
}

// PostingDayNumbers lists the day numbers of a span whose weekday is in days.
func PostingDayNumbers(start time.Time, duration int, days Set) []int {
	out := []int{}
	for n := 1; n <= duration; n++ {
		if IsPostingDay(start, n, days) {
			out = append(out, n)
		}
	}
	return out
}

// NextMondayOnOrAfter returns d if it is a Monday, else the following Monday.
func NextMondayOnOrAfter(d time.Time) time.Time {
	d = DateOnly(d)
	offset := (int(time.Monday) - int(d.Weekday()) + weekLength) % weekLength
	return d.AddDate(0, 0, offset)
}

// NextMondayAfter returns the first Monday strictly after d.
func NextMondayAfter(d time.Time) time.Time {
	return NextMondayOnOrAfter(DateOnly(d).AddDate(0, 0, 1))
}

// FirstOfNextMonth returns the 1st of the month following d.
func FirstOfNextMonth(d time.Time) time.Time {
	y, m, _ := d.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, time.UTC)
}

// Span is the placement-relevant part of an existing plan.
type Span struct {
	Start    time.Time
	Duration int
}

func (s Span) End() time.Time {
	return DayDate(s.Start, s.Duration)
}

// LatestSpan returns the span with the latest end date, or nil.
func LatestSpan(spans []Span) *Span {
	var latest *Span
	for i := range spans {
		if latest == nil || spans[i].End().After(latest.End()) {
			latest = &spans[i]
		}
	}
	return latest
}

// NextPlanStart places a new plan. Without a prior plan it starts on the next
// Monday on or after today. After a weekly plan it starts the Monday after the
// prior end; after a longer plan, the 1st of the following month. A stacked
// date already in the past falls back to the no-prior rule.
func NextPlanStart(today time.Time, prior *Span) time.Time {
	fresh := NextMondayOnOrAfter(today)
	if prior == nil {
		return fresh
	}
	var stacked time.Time
	if prior.Duration <= weekLength {
		stacked = NextMondayAfter(prior.End())
	} else {
		stacked = FirstOfNextMonth(prior.End())
	}
	if stacked.Before(DateOnly(today)) {
		return fresh
	}
	return stacked
}

// WeekOfMonth is floor((dayOfMonth-1)/7)+1.
func WeekOfMonth(d time.Time) int {
	return (d.Day()-1)/weekLength + 1
}
