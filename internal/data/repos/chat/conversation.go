package chat

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

type ChatConversationRepo interface {
	Create(dbc dbctx.Context, row *types.ChatConversation) (*types.ChatConversation, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatConversation, error)
	LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type chatConversationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChatConversationRepo(db *gorm.DB, log *logger.Logger) ChatConversationRepo {
	return &chatConversationRepo{db: db, log: log.With("repo", "ChatConversationRepo")}
}

func (r *chatConversationRepo) Create(dbc dbctx.Context, row *types.ChatConversation) (*types.ChatConversation, error) {
	if row == nil {
		return nil, fmt.Errorf("missing conversation")
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *chatConversationRepo) GetByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	var out types.ChatConversation
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatConversationRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatConversation, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []*types.ChatConversation{}
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("last_message_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *chatConversationRepo) LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error) {
	if userID == uuid.Nil || id == uuid.Nil {
		return nil, fmt.Errorf("missing ids")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID required dbc.Tx")
	}
	var out types.ChatConversation
	err := dbc.DB(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *chatConversationRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).
		Model(&types.ChatConversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}
