package services

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

func newChatService(s *memStore, llm *fakeLLM) ChatService {
	quizRepo, _, _, _ := s.repos()
	return NewChatService(testLog, s, llm, &fakeConvRepo{s}, &fakeMsgRepo{s}, quizRepo)
}

func TestSendMessageStreamsAndStoresReply(t *testing.T) {
	s := newMemStore()
	llm := &fakeLLM{deltas: []string{"Start ", "with a ", "hook."}}
	svc := newChatService(s, llm)
	userID := uuid.New()
	ctx := context.Background()

	conv, err := svc.CreateConversation(ctx, userID, "")
	require.NoError(t, err)
	assert.Equal(t, "New Chat", conv.Title)

	var streamed []string
	userMsg, reply, err := svc.SendMessage(ctx, userID, conv.ID, "How do I open a video?", func(d string) { streamed = append(streamed, d) })
	require.NoError(t, err)
	assert.Equal(t, []string{"Start ", "with a ", "hook."}, streamed)
	assert.Equal(t, int64(1), userMsg.Seq)
	require.NotNil(t, reply)
	assert.Equal(t, int64(2), reply.Seq)
	assert.Equal(t, types.RoleAssistant, reply.Role)
	assert.Equal(t, "Start with a hook.", reply.Content)

	msgs, err := svc.ListMessages(ctx, userID, conv.ID, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.RoleUser, msgs[0].Role)

	convs, err := svc.ListConversations(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "How do I open a video?", convs[0].Title)
	assert.Equal(t, int64(2), convs[0].NextSeq)
}

func TestSendMessageDiscardsCancelledStream(t *testing.T) {
	s := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	llm := &fakeLLM{deltas: []string{"partial ", "reply"}}
	llm.beforeDelta = func(i int) {
		if i == 1 {
			cancel()
		}
	}
	svc := newChatService(s, llm)
	userID := uuid.New()
	conv, err := svc.CreateConversation(context.Background(), userID, "Hooks")
	require.NoError(t, err)

	_, reply, err := svc.SendMessage(ctx, userID, conv.ID, "hello", nil)
	require.Error(t, err)
	assert.Nil(t, reply)

	msgs, err := svc.ListMessages(context.Background(), userID, conv.ID, 50)
	require.NoError(t, err)
	require.Len(t, msgs, 1, "only the user message is kept")
	assert.Equal(t, types.RoleUser, msgs[0].Role)
}

func TestSendMessageValidationAndOwnership(t *testing.T) {
	s := newMemStore()
	svc := newChatService(s, &fakeLLM{deltas: []string{"ok"}})
	userID := uuid.New()
	conv, err := svc.CreateConversation(context.Background(), userID, "x")
	require.NoError(t, err)

	_, _, err = svc.SendMessage(context.Background(), userID, conv.ID, "   ", nil)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)

	_, _, err = svc.SendMessage(context.Background(), userID, conv.ID, strings.Repeat("a", maxChatMessageRunes+1), nil)
	e, ok = apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)

	_, _, err = svc.SendMessage(context.Background(), uuid.New(), conv.ID, "hi", nil)
	assert.True(t, apierr.IsNotFound(err))

	_, err = svc.ListMessages(context.Background(), uuid.New(), conv.ID, 10)
	assert.True(t, apierr.IsNotFound(err))
	assert.Empty(t, s.msgs)
}
