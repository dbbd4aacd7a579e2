package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

func newQuizService(t *testing.T, s *memStore) QuizService {
	t.Helper()
	catalog, err := quiz.Default()
	require.NoError(t, err)
	quizRepo, _, _, _ := s.repos()
	return NewQuizService(testLog, catalog, quizRepo)
}

func completeAnswers(c *quiz.Catalog) quiz.Answers {
	out := quiz.Answers{}
	for _, q := range c.Questions {
		out[q.ID] = types.QuizAnswer{OptionIDs: []string{q.Options[0].ID}}
	}
	return out
}

func TestQuizSubmitAnonymousThenClaim(t *testing.T) {
	s := newMemStore()
	svc := newQuizService(t, s)
	ctx := context.Background()

	row, err := svc.Submit(ctx, nil, completeAnswers(svc.Catalog()))
	require.NoError(t, err)
	assert.True(t, row.Anonymous())
	assert.NotEmpty(t, row.PrimaryArchetype)
	assert.NotEqual(t, row.PrimaryArchetype, row.SecondaryArchetype)

	userID := uuid.New()
	claimed, err := svc.Claim(ctx, userID, row.ID)
	require.NoError(t, err)
	assert.True(t, claimed.OwnedBy(userID))

	again, err := svc.Claim(ctx, userID, row.ID)
	require.NoError(t, err, "claiming twice is idempotent for the owner")
	assert.Equal(t, row.ID, again.ID)

	_, err = svc.Claim(ctx, uuid.New(), row.ID)
	assert.True(t, apierr.IsNotFound(err))

	latest, err := svc.Latest(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, row.ID, latest.ID)
}

func TestQuizSubmitRejectsIncompleteAnswers(t *testing.T) {
	s := newMemStore()
	svc := newQuizService(t, s)
	answers := completeAnswers(svc.Catalog())
	delete(answers, svc.Catalog().Questions[0].ID)

	_, err := svc.Submit(context.Background(), nil, answers)
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Empty(t, s.quiz)
}

func TestQuizLatestWithoutResponse(t *testing.T) {
	_, err := newQuizService(t, newMemStore()).Latest(context.Background(), uuid.New())
	assert.True(t, apierr.IsNotFound(err))
}
