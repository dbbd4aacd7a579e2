package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a lowercase English weekday name.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// AllWeekdays is the canonical Monday-first order.
var AllWeekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var fromTime = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// ParseWeekday accepts full names and three-letter abbreviations in any case.
func ParseWeekday(s string) (Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllWeekdays {
		if v == string(d) || (len(v) == 3 && strings.HasPrefix(string(d), v)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown weekday %q", s)
}

// WeekdayOf returns the weekday of t's calendar date.
func WeekdayOf(t time.Time) Weekday {
	return fromTime[t.Weekday()]
}

func (d Weekday) index() int {
	for i, w := range AllWeekdays {
		if w == d {
			return i
		}
	}
	return len(AllWeekdays)
}

// Set is an unordered set of weekdays.
type Set map[Weekday]struct{}

func NewSet(days ...Weekday) Set {
	s := make(Set, len(days))
	for _, d := range days {
		s[d] = struct{}{}
	}
	return s
}

// ParseSet parses and dedupes names. Unknown names are an error.
func ParseSet(names []string) (Set, error) {
	s := make(Set, len(names))
	for _, n := range names {
		d, err := ParseWeekday(n)
		if err != nil {
			return nil, err
		}
		s[d] = struct{}{}
	}
	return s, nil
}

func (s Set) Has(d Weekday) bool {
	_, ok := s[d]
	return ok
}

// Minus returns the days in s that are not in other.
func (s Set) Minus(other Set) Set {
	out := Set{}
	for d := range s {
		if !other.Has(d) {
			out[d] = struct{}{}
		}
	}
	return out
}

// Sorted returns the days in canonical order.
func (s Set) Sorted() []Weekday {
	out := make([]Weekday, 0, len(s))
	for _, d := range AllWeekdays {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Strings returns the canonical-order names, suitable for persistence.
func (s Set) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, d := range sorted {
		out[i] = string(d)
	}
	return out
}

// Equal reports whether both sets hold the same days.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for d := range s {
		if !other.Has(d) {
			return false
		}
	}
	return true
}

// NormalizeDays parses names into canonical order, rejecting empty input.
func NormalizeDays(names []string) ([]string, error) {
	set, err := ParseSet(names)
	if err != nil {
		return nil, err
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("at least one posting day is required")
	}
	return set.Strings(), nil
}

// SetFromStored parses persisted names, dropping anything unrecognized.
func SetFromStored(names []string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if d, err := ParseWeekday(n); err == nil {
			s[d] = struct{}{}
		}
	}
	return s
}
