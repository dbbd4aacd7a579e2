package plan

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/creatorcoach-backend/internal/data/dberr"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

// ErrDuplicateTask is returned when a task already exists for (plan, day).
var ErrDuplicateTask = errors.New("task already exists for plan day")

type PlanTaskRepo interface {
	Create(dbc dbctx.Context, rows []*types.PlanTask) ([]*types.PlanTask, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.PlanTask, error)
	ListByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) ([]*types.PlanTask, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PlanTask, error)
	UpdateFields(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID, updates map[string]interface{}) (*types.PlanTask, error)
	DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error)
	DeleteByPlanID(dbc dbctx.Context, planID uuid.UUID) (int64, error)
}

type planTaskRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlanTaskRepo(db *gorm.DB, baseLog *logger.Logger) PlanTaskRepo {
	return &planTaskRepo{db: db, log: baseLog.With("repo", "PlanTaskRepo")}
}

func (r *planTaskRepo) Create(dbc dbctx.Context, rows []*types.PlanTask) ([]*types.PlanTask, error) {
	if len(rows) == 0 {
		return []*types.PlanTask{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		if dberr.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrDuplicateTask, err)
		}
		return nil, err
	}
	return rows, nil
}

func (r *planTaskRepo) GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.PlanTask, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	var out types.PlanTask
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

func (r *planTaskRepo) ListByPlanIDs(dbc dbctx.Context, planIDs []uuid.UUID) ([]*types.PlanTask, error) {
	out := []*types.PlanTask{}
	if len(planIDs) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("plan_id IN ?", planIDs).
		Order("plan_id ASC, day_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planTaskRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.PlanTask, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	out := []*types.PlanTask{}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("plan_id ASC, day_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *planTaskRepo) UpdateFields(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID, updates map[string]interface{}) (*types.PlanTask, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	res := dbc.DB(r.db).
		Model(&types.PlanTask{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(dbc, userID, id)
}

func (r *planTaskRepo) DeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.PlanTask{})
	return res.RowsAffected, res.Error
}

func (r *planTaskRepo) DeleteByPlanID(dbc dbctx.Context, planID uuid.UUID) (int64, error) {
	if planID == uuid.Nil {
		return 0, fmt.Errorf("missing plan_id")
	}
	res := dbc.DB(r.db).Where("plan_id = ?", planID).Delete(&types.PlanTask{})
	return res.RowsAffected, res.Error
}
