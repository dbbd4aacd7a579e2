package plan

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DurationWeek  = 7
	DurationMonth = 30
)

// DayDescriptor is one generated day of a plan, whether or not a task row
// exists for it.
type DayDescriptor struct {
	DayNumber    int    `json:"day_number"`
	Task         string `json:"task"`
	TimeEstimate string `json:"time_estimate"`
	Platform     string `json:"platform,omitempty"`
	Tip          string `json:"tip"`
}

type ContentPlan struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	QuizResponseID *uuid.UUID `gorm:"type:uuid;column:quiz_response_id;index" json:"quiz_response_id,omitempty"`

	Title     string    `gorm:"column:title;not null;default:''" json:"title"`
	StartDate time.Time `gorm:"column:start_date;type:date;not null;index" json:"start_date"`
	Duration  int       `gorm:"column:duration;not null" json:"duration"`

	// PostingDays holds lowercase weekday names.
	PostingDays datatypes.JSONSlice[string]        `gorm:"column:posting_days;type:jsonb;not null;default:'[]'" json:"posting_days"`
	Plan        datatypes.JSONSlice[DayDescriptor] `gorm:"column:plan;type:jsonb;not null;default:'[]'" json:"plan"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ContentPlan) TableName() string { return "content_plan" }

// DateOf returns the calendar date of a 1-based day number.
func (p *ContentPlan) DateOf(dayNumber int) time.Time {
	return p.StartDate.AddDate(0, 0, dayNumber-1)
}

// EndDate is the date of the last day of the plan.
func (p *ContentPlan) EndDate() time.Time {
	return p.DateOf(p.Duration)
}

// Descriptor returns the descriptor for dayNumber, if the plan has one.
func (p *ContentPlan) Descriptor(dayNumber int) (DayDescriptor, bool) {
	for _, d := range p.Plan {
		if d.DayNumber == dayNumber {
			return d, true
		}
	}
	return DayDescriptor{}, false
}
