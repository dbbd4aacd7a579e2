package settings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// UserSettings is the single per-user row holding the global posting days and
// reminder preferences. Sent dates are "YYYY-MM-DD" in the user's timezone.
type UserSettings struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`

	PostingDays datatypes.JSONSlice[string] `gorm:"column:posting_days;type:jsonb;not null;default:'[]'" json:"posting_days"`

	Timezone         string `gorm:"column:timezone;not null;default:'UTC'" json:"timezone"`
	NotificationTime string `gorm:"column:notification_time;not null;default:'09:00'" json:"notification_time"`

	Email        string `gorm:"column:email;not null;default:''" json:"email"`
	EmailEnabled bool   `gorm:"column:email_enabled;not null;default:false;index" json:"email_enabled"`
	EmailConsent bool   `gorm:"column:email_consent;not null;default:false" json:"email_consent"`

	Phone      string `gorm:"column:phone;not null;default:''" json:"phone"`
	SMSEnabled bool   `gorm:"column:sms_enabled;not null;default:false;index" json:"sms_enabled"`
	SMSConsent bool   `gorm:"column:sms_consent;not null;default:false" json:"sms_consent"`

	LastEmailSentDate string `gorm:"column:last_email_sent_date;not null;default:''" json:"last_email_sent_date"`
	LastSMSSentDate   string `gorm:"column:last_sms_sent_date;not null;default:''" json:"last_sms_sent_date"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (UserSettings) TableName() string { return "user_settings" }

// Destination returns the address for channel when it is enabled and consented.
func (s *UserSettings) Destination(channel string) (string, bool) {
	switch channel {
	case ChannelEmail:
		return s.Email, s.EmailEnabled && s.EmailConsent && s.Email != ""
	case ChannelSMS:
		return s.Phone, s.SMSEnabled && s.SMSConsent && s.Phone != ""
	default:
		return "", false
	}
}

func (s *UserSettings) LastSentDate(channel string) string {
	if channel == ChannelSMS {
		return s.LastSMSSentDate
	}
	return s.LastEmailSentDate
}
