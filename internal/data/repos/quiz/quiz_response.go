package quiz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type QuizResponseRepo interface {
	Create(dbc dbctx.Context, row *types.QuizResponse) (*types.QuizResponse, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizResponse, error)
	GetLatestByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.QuizResponse, error)
	// Claim sets user_id on an anonymous response. It reports false when the
	// response does not exist or already has an owner.
	Claim(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
}

type quizResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizResponseRepo(db *gorm.DB, baseLog *logger.Logger) QuizResponseRepo {
	return &quizResponseRepo{db: db, log: baseLog.With("repo", "QuizResponseRepo")}
}

func (r *quizResponseRepo) Create(dbc dbctx.Context, row *types.QuizResponse) (*types.QuizResponse, error) {
	if row == nil {
		return nil, fmt.Errorf("missing quiz response")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *quizResponseRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.QuizResponse, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	var out types.QuizResponse
	err := dbc.DB(r.db).Where("id = ?", id).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quizResponseRepo) GetLatestByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.QuizResponse, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	var out types.QuizResponse
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *quizResponseRepo) Claim(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return false, fmt.Errorf("missing ids")
	}
	res := dbc.DB(r.db).
		Model(&types.QuizResponse{}).
		Where("id = ? AND user_id IS NULL", id).
		Update("user_id", userID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
