package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type ContentPlanRepo interface {
	Create(dbc dbctx.Context, row *types.ContentPlan) (*types.ContentPlan, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error)
	// ListByUserID returns the user's plans ordered by start date.
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ContentPlan, error)
	ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.ContentPlan, error)
	LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error)
	UpdatePostingDays(dbc dbctx.Context, id uuid.UUID, days []string) error
	Delete(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (bool, error)
}

type contentPlanRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentPlanRepo(db *gorm.DB, baseLog *logger.Logger) ContentPlanRepo {
	return &contentPlanRepo{db: db, log: baseLog.With("repo", "ContentPlanRepo")}
}

func (r *contentPlanRepo) Create(dbc dbctx.Context, row *types.ContentPlan) (*types.ContentPlan, error) {
	if row == nil {
		return nil, fmt.Errorf("missing plan")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *contentPlanRepo) GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	var out types.ContentPlan
	err := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentPlanRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ContentPlan, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	return r.ListByUserIDs(dbc, []uuid.UUID{userID})
}

func (r *contentPlanRepo) ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.ContentPlan, error) {
	out := []*types.ContentPlan{}
	if len(userIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id IN ?", userIDs).
		Order("start_date ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentPlanRepo) LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID required dbc.Tx")
	}
	var out types.ContentPlan
	if err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentPlanRepo) UpdatePostingDays(dbc dbctx.Context, id uuid.UUID, days []string) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	return dbc.DB(r.db).
		Model(&types.ContentPlan{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"posting_days": datatypes.JSONSlice[string](days),
			"updated_at":   time.Now().UTC(),
		}).Error
}

func (r *contentPlanRepo) Delete(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (bool, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return false, fmt.Errorf("missing ids")
	}
	res := dbc.DB(r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.ContentPlan{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
