package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/openai"
)

const (
	defaultChatTitle    = "New Chat"
	maxChatMessageRunes = 8000
	chatHistoryWindow   = 30
	chatTitleRunes      = 60
)

type ChatService interface {
	CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.ChatConversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ChatConversation, error)
	ListMessages(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error)
	// SendMessage stores the user message, streams the reply through onDelta and
	// stores the assistant message once the stream completes. A cancelled or
	// failed stream stores nothing for the assistant.
	SendMessage(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, content string, onDelta func(string)) (*types.ChatMessage, *types.ChatMessage, error)
}

type chatService struct {
	log      *logger.Logger
	tx       dbctx.Transactor
	llm      openai.Client
	convRepo repos.ChatConversationRepo
	msgRepo  repos.ChatMessageRepo
	quizRepo repos.QuizResponseRepo
	now      func() time.Time
}

func NewChatService(
	log *logger.Logger,
	tx dbctx.Transactor,
	llm openai.Client,
	convRepo repos.ChatConversationRepo,
	msgRepo repos.ChatMessageRepo,
	quizRepo repos.QuizResponseRepo,
) ChatService {
	return &chatService{
		log:      log.With("service", "ChatService"),
		tx:       tx,
		llm:      llm,
		convRepo: convRepo,
		msgRepo:  msgRepo,
		quizRepo: quizRepo,
		now:      time.Now,
	}
}

func (cs *chatService) CreateConversation(ctx context.Context, userID uuid.UUID, title string) (*types.ChatConversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultChatTitle
	}
	now := cs.now().UTC()
	row := &types.ChatConversation{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         truncateRunes(title, chatTitleRunes),
		LastMessageAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	created, err := cs.convRepo.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("create conversation: %w", err))
	}
	return created, nil
}

func (cs *chatService) ListConversations(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ChatConversation, error) {
	rows, err := cs.convRepo.ListByUserID(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list conversations: %w", err))
	}
	return rows, nil
}

func (cs *chatService) ListMessages(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	dbc := dbctx.Context{Ctx: ctx}
	conv, err := cs.convRepo.GetByID(dbc, userID, conversationID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load conversation: %w", err))
	}
	if conv == nil {
		return nil, apierr.NotFound("conversation")
	}
	rows, err := cs.msgRepo.ListByConversation(dbc, conversationID, limit)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list messages: %w", err))
	}
	return rows, nil
}

func (cs *chatService) SendMessage(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, content string, onDelta func(string)) (*types.ChatMessage, *types.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, nil, apierr.BadRequest("message is required")
	}
	if utf8.RuneCountInString(content) > maxChatMessageRunes {
		return nil, nil, apierr.BadRequest("message exceeds %d characters", maxChatMessageRunes)
	}
	if cs.llm == nil {
		return nil, nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeUpstream, fmt.Errorf("chat is not configured"))
	}

	userMsg, err := cs.appendMessage(ctx, userID, conversationID, types.RoleUser, content)
	if err != nil {
		return nil, nil, err
	}

	history, err := cs.msgRepo.ListByConversation(dbctx.Context{Ctx: ctx}, conversationID, chatHistoryWindow)
	if err != nil {
		return userMsg, nil, apierr.Internal(fmt.Errorf("load history: %w", err))
	}
	system := cs.systemPrompt(ctx, userID)

	reply, err := cs.llm.StreamText(ctx, system, renderTranscript(history), func(delta string) {
		if onDelta != nil && delta != "" {
			onDelta(delta)
		}
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			cs.log.Info("chat stream cancelled, discarding reply", "conversation_id", conversationID)
			return userMsg, nil, ctx.Err()
		}
		cs.log.Warn("chat stream failed", "conversation_id", conversationID, "error", err)
		return userMsg, nil, apierr.Upstream(err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return userMsg, nil, apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("empty reply from model"))
	}

	// The stream is done; persist even if the client has since gone away.
	assistant, err := cs.appendMessage(context.WithoutCancel(ctx), userID, conversationID, types.RoleAssistant, reply)
	if err != nil {
		return userMsg, nil, err
	}
	return userMsg, assistant, nil
}

// appendMessage assigns the next sequence number under the conversation row lock.
func (cs *chatService) appendMessage(ctx context.Context, userID uuid.UUID, conversationID uuid.UUID, role string, content string) (*types.ChatMessage, error) {
	var out *types.ChatMessage
	err := cs.tx.InTx(ctx, func(dbc dbctx.Context) error {
		conv, err := cs.convRepo.LockByID(dbc, userID, conversationID)
		if err != nil {
			return apierr.Internal(fmt.Errorf("lock conversation: %w", err))
		}
		if conv == nil {
			return apierr.NotFound("conversation")
		}
		now := cs.now().UTC()
		seq := conv.NextSeq + 1
		rows, err := cs.msgRepo.Create(dbc, []*types.ChatMessage{{
			ID:             uuid.New(),
			ConversationID: conversationID,
			UserID:         userID,
			Seq:            seq,
			Role:           role,
			Content:        content,
			CreatedAt:      now,
		}})
		if err != nil {
			return apierr.Internal(fmt.Errorf("store message: %w", err))
		}
		updates := map[string]interface{}{
			"next_seq":        seq,
			"last_message_at": now,
			"updated_at":      now,
		}
		if role == types.RoleUser && conv.Title == defaultChatTitle {
			updates["title"] = truncateRunes(content, chatTitleRunes)
		}
		if err := cs.convRepo.UpdateFields(dbc, conversationID, updates); err != nil {
			return apierr.Internal(fmt.Errorf("update conversation: %w", err))
		}
		out = rows[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

const chatBasePrompt = `You are a friendly, practical coach for new content creators.
Give concrete next steps, short scripts and hooks when useful. Keep answers brief and encouraging.`

func (cs *chatService) systemPrompt(ctx context.Context, userID uuid.UUID) string {
	qr, err := cs.quizRepo.GetLatestByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil || qr == nil {
		return chatBasePrompt
	}
	var b strings.Builder
	b.WriteString(chatBasePrompt)
	fmt.Fprintf(&b, "\nCreator archetype: %s (secondary %s).", qr.PrimaryArchetype, qr.SecondaryArchetype)
	if len(qr.SelectedTopics) > 0 {
		fmt.Fprintf(&b, "\nTopics: %s.", strings.Join(qr.SelectedTopics, ", "))
	}
	if qr.TargetAudience != "" {
		fmt.Fprintf(&b, "\nAudience: %s.", qr.TargetAudience)
	}
	return b.String()
}

func renderTranscript(history []*types.ChatMessage) string {
	var b strings.Builder
	for _, m := range history {
		who := "Creator"
		if m.Role == types.RoleAssistant {
			who = "Coach"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", who, m.Content)
	}
	b.WriteString("Coach:")
	return b.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}
