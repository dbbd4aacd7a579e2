package ideas

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type GeneratedIdeasRepo interface {
	Create(dbc dbctx.Context, row *types.GeneratedIdeas) (*types.GeneratedIdeas, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.GeneratedIdeas, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.GeneratedIdeas, error)
	UpdateFlags(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID, saved *bool, favorited *bool) (*types.GeneratedIdeas, error)
}

type generatedIdeasRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGeneratedIdeasRepo(db *gorm.DB, baseLog *logger.Logger) GeneratedIdeasRepo {
	return &generatedIdeasRepo{db: db, log: baseLog.With("repo", "GeneratedIdeasRepo")}
}

func (r *generatedIdeasRepo) Create(dbc dbctx.Context, row *types.GeneratedIdeas) (*types.GeneratedIdeas, error) {
	if row == nil {
		return nil, fmt.Errorf("missing ideas")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *generatedIdeasRepo) GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.GeneratedIdeas, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	var out types.GeneratedIdeas
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *generatedIdeasRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.GeneratedIdeas, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []*types.GeneratedIdeas{}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *generatedIdeasRepo) UpdateFlags(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID, saved *bool, favorited *bool) (*types.GeneratedIdeas, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	updates := map[string]interface{}{}
	if saved != nil {
		updates["saved"] = *saved
	}
	if favorited != nil {
		updates["favorited"] = *favorited
	}
	if len(updates) > 0 {
		res := dbc.DB(r.db).
			Model(&types.GeneratedIdeas{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetByID(dbc, userID, id)
}
