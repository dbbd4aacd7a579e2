package ideas

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Idea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Format      string `json:"format"`
	Platform    string `json:"platform"`
	Hook        string `json:"hook"`
}

// GeneratedIdeas is one saved batch. Only Saved and Favorited change after insert.
type GeneratedIdeas struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	QuizResponseID *uuid.UUID `gorm:"type:uuid;column:quiz_response_id;index" json:"quiz_response_id,omitempty"`

	Ideas datatypes.JSONSlice[Idea] `gorm:"column:ideas;type:jsonb;not null;default:'[]'" json:"ideas"`

	Saved     bool `gorm:"column:saved;not null;default:false;index" json:"saved"`
	Favorited bool `gorm:"column:favorited;not null;default:false;index" json:"favorited"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (GeneratedIdeas) TableName() string { return "generated_ideas" }
