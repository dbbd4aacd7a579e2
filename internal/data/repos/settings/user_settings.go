package settings

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type UserSettingsRepo interface {
	Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserSettings, error)
	// Upsert inserts the row or overwrites the listed columns.
	Upsert(dbc dbctx.Context, row *types.UserSettings, columns ...string) (*types.UserSettings, error)
	// ListNotifiable returns users with channel enabled and consented and a destination.
	ListNotifiable(dbc dbctx.Context, channel string) ([]*types.UserSettings, error)
	StampSentDate(dbc dbctx.Context, userID uuid.UUID, channel string, date string) error
}

type userSettingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserSettingsRepo(db *gorm.DB, baseLog *logger.Logger) UserSettingsRepo {
	return &userSettingsRepo{db: db, log: baseLog.With("repo", "UserSettingsRepo")}
}

func (r *userSettingsRepo) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserSettings, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.UserSettings
	err := dbc.DB(r.db).Where("user_id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userSettingsRepo) Upsert(dbc dbctx.Context, row *types.UserSettings, columns ...string) (*types.UserSettings, error) {
	if row == nil || row.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	now := time.Now().UTC()
	row.UpdatedAt = now
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	onConflict := clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}}
	if len(columns) == 0 {
		onConflict.UpdateAll = true
	} else {
		onConflict.DoUpdates = clause.AssignmentColumns(append(columns, "updated_at"))
	}
	if err := dbc.DB(r.db).Clauses(onConflict).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, row.UserID)
}

func (r *userSettingsRepo) ListNotifiable(dbc dbctx.Context, channel string) ([]*types.UserSettings, error) {
	q := dbc.DB(r.db).Model(&types.UserSettings{})
	switch channel {
	case types.ChannelEmail:
		q = q.Where("email_enabled = ? AND email_consent = ? AND email <> ''", true, true)
	case types.ChannelSMS:
		q = q.Where("sms_enabled = ? AND sms_consent = ? AND phone <> ''", true, true)
	default:
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
	out := []*types.UserSettings{}
	if err := q.Order("user_id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userSettingsRepo) StampSentDate(dbc dbctx.Context, userID uuid.UUID, channel string, date string) error {
	if userID == uuid.Nil {
		return fmt.Errorf("missing user_id")
	}
	var column string
	switch channel {
	case types.ChannelEmail:
		column = "last_email_sent_date"
	case types.ChannelSMS:
		column = "last_sms_sent_date"
	default:
		return fmt.Errorf("unknown channel %q", channel)
	}
	return dbc.DB(r.db).
		Model(&types.UserSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{column: date, "updated_at": time.Now().UTC()}).Error
}
