package plan

import (
	"time"

	"github.com/google/uuid"
)

// PlanTask is the trackable row for a posting day of a plan. At most one row
// exists per (plan_id, day_number).
type PlanTask struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_plan_task_plan_day,priority:1" json:"plan_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	DayNumber int       `gorm:"column:day_number;not null;uniqueIndex:idx_plan_task_plan_day,priority:2" json:"day_number"`

	Completed   bool       `gorm:"column:completed;not null;default:false;index" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	Notes       string     `gorm:"column:notes;type:text;not null;default:''" json:"notes"`

	PostTitle       string `gorm:"column:post_title;not null;default:''" json:"post_title"`
	PostDescription string `gorm:"column:post_description;type:text;not null;default:''" json:"post_description"`
	Platform        string `gorm:"column:platform;not null;default:''" json:"platform"`

	ScriptCompleted  bool `gorm:"column:script_completed;not null;default:false" json:"script_completed"`
	ContentCreated   bool `gorm:"column:content_created;not null;default:false" json:"content_created"`
	ContentEdited    bool `gorm:"column:content_edited;not null;default:false" json:"content_edited"`
	ContentPublished bool `gorm:"column:content_published;not null;default:false" json:"content_published"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (PlanTask) TableName() string { return "plan_task" }

// NewDefaultTask builds the incomplete task materialized for a descriptor.
func NewDefaultTask(p *ContentPlan, d DayDescriptor) *PlanTask {
	return &PlanTask{
		ID:        uuid.New(),
		PlanID:    p.ID,
		UserID:    p.UserID,
		DayNumber: d.DayNumber,
		PostTitle: d.Task,
		Platform:  d.Platform,
	}
}
