package services

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

var e164 = regexp.MustCompile(`^\+[1-9][0-9]{6,14}$`)

// NotificationSettingsInput is a partial update; nil fields are unchanged.
type NotificationSettingsInput struct {
	Timezone         *string `json:"timezone"`
	NotificationTime *string `json:"notification_time"`
	Email            *string `json:"email"`
	EmailEnabled     *bool   `json:"email_enabled"`
	EmailConsent     *bool   `json:"email_consent"`
	Phone            *string `json:"phone"`
	SMSEnabled       *bool   `json:"sms_enabled"`
	SMSConsent       *bool   `json:"sms_consent"`
}

type SettingsService interface {
	Get(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error)
	UpdateNotifications(ctx context.Context, userID uuid.UUID, in NotificationSettingsInput) (*types.UserSettings, error)
}

type settingsService struct {
	log          *logger.Logger
	settingsRepo repos.UserSettingsRepo
}

func NewSettingsService(log *logger.Logger, settingsRepo repos.UserSettingsRepo) SettingsService {
	return &settingsService{log: log.With("service", "SettingsService"), settingsRepo: settingsRepo}
}

func defaultSettings(userID uuid.UUID) *types.UserSettings {
	return &types.UserSettings{
		UserID:           userID,
		PostingDays:      []string{},
		Timezone:         "UTC",
		NotificationTime: "09:00",
	}
}

func (ss *settingsService) Get(ctx context.Context, userID uuid.UUID) (*types.UserSettings, error) {
	st, err := ss.settingsRepo.Get(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load settings: %w", err))
	}
	if st == nil {
		return defaultSettings(userID), nil
	}
	return st, nil
}

func (ss *settingsService) UpdateNotifications(ctx context.Context, userID uuid.UUID, in NotificationSettingsInput) (*types.UserSettings, error) {
	st, err := ss.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Timezone != nil {
		tz := strings.TrimSpace(*in.Timezone)
		if _, err := time.LoadLocation(tz); err != nil || tz == "" {
			return nil, apierr.BadRequest("unknown timezone %q", tz)
		}
		st.Timezone = tz
	}
	if in.NotificationTime != nil {
		hhmm := strings.TrimSpace(*in.NotificationTime)
		if _, err := time.Parse("15:04", hhmm); err != nil {
			return nil, apierr.BadRequest("notification_time must be HH:MM")
		}
		st.NotificationTime = hhmm
	}
	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email != "" {
			addr, err := mail.ParseAddress(email)
			if err != nil {
				return nil, apierr.BadRequest("invalid email")
			}
			email = addr.Address
		}
		st.Email = email
	}
	if in.Phone != nil {
		phone := strings.ReplaceAll(strings.TrimSpace(*in.Phone), " ", "")
		if phone != "" && !e164.MatchString(phone) {
			return nil, apierr.BadRequest("phone must be in E.164 format")
		}
		st.Phone = phone
	}
	if in.EmailEnabled != nil {
		st.EmailEnabled = *in.EmailEnabled
	}
	if in.EmailConsent != nil {
		st.EmailConsent = *in.EmailConsent
	}
	if in.SMSEnabled != nil {
		st.SMSEnabled = *in.SMSEnabled
	}
	if in.SMSConsent != nil {
		st.SMSConsent = *in.SMSConsent
	}
	if st.EmailEnabled && st.Email == "" {
		return nil, apierr.BadRequest("email is required to enable email reminders")
	}
	if st.SMSEnabled && st.Phone == "" {
		return nil, apierr.BadRequest("phone is required to enable SMS reminders")
	}

	saved, err := ss.settingsRepo.Upsert(dbctx.Context{Ctx: ctx}, st,
		"timezone", "notification_time",
		"email", "email_enabled", "email_consent",
		"phone", "sms_enabled", "sms_consent",
	)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("store settings: %w", err))
	}
	return saved, nil
}
