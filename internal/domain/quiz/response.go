package quiz

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Answer is one question's selection: option ids and/or free text.
type Answer struct {
	OptionIDs []string `json:"option_ids,omitempty"`
	Text      string   `json:"text,omitempty"`
}

// QuizResponse is immutable once written. UserID is nil for anonymous
// submissions and may be set exactly once by a claim.
type QuizResponse struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`

	Answers         datatypes.JSONType[map[string]Answer] `gorm:"column:answers;type:jsonb;not null" json:"answers"`
	ArchetypeScores datatypes.JSONType[map[string]int]    `gorm:"column:archetype_scores;type:jsonb;not null" json:"archetype_scores"`

	PrimaryArchetype   string `gorm:"column:primary_archetype;not null;index" json:"primary_archetype"`
	SecondaryArchetype string `gorm:"column:secondary_archetype;not null" json:"secondary_archetype"`

	SelectedTopics datatypes.JSONSlice[string] `gorm:"column:selected_topics;type:jsonb;not null;default:'[]'" json:"selected_topics"`
	TimeBucket     string                      `gorm:"column:time_bucket;not null;default:''" json:"time_bucket"`
	Gear           datatypes.JSONSlice[string] `gorm:"column:gear;type:jsonb;not null;default:'[]'" json:"gear"`
	TargetAudience string                      `gorm:"column:target_audience;type:text;not null;default:''" json:"target_audience"`
	PlatformBias   datatypes.JSONSlice[string] `gorm:"column:platform_bias;type:jsonb;not null;default:'[]'" json:"platform_bias"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (QuizResponse) TableName() string { return "quiz_response" }

// Anonymous reports whether the response has not been claimed yet.
func (q *QuizResponse) Anonymous() bool { return q.UserID == nil }

// OwnedBy reports whether userID owns the response.
func (q *QuizResponse) OwnedBy(userID uuid.UUID) bool {
	return q.UserID != nil && *q.UserID == userID
}
