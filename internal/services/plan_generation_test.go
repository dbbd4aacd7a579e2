package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("upstream status %d", e.code) }
func (e *statusErr) HTTPStatusCode() int { return e.code }

func newPlanGeneration(t *testing.T, s *memStore, llm *fakeLLM, now time.Time) PlanGenerationService {
	t.Helper()
	catalog, err := quiz.Default()
	require.NoError(t, err)
	quizRepo, planRepo, taskRepo, settingsRepo := s.repos()
	svc := NewPlanGenerationService(testLog, s, catalog, llm, quizRepo, planRepo, taskRepo, settingsRepo)
	svc.(*planGenerationService).now = func() time.Time { return now }
	return svc
}

func weekLLM() *fakeLLM {
	return &fakeLLM{json: func(_ string, _ string) (map[string]any, error) { return planDays(7), nil }}
}

func TestGenerateStacksAfterPriorWeek(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	seedPlan(s, userID, date(2025, 1, 6), 7, "monday")

	svc := newPlanGeneration(t, s, weekLLM(), time.Date(2025, 1, 8, 15, 0, 0, 0, time.UTC))
	out, err := svc.Generate(context.Background(), userID, GeneratePlanInput{
		Archetypes:  []string{"educator"},
		PostingDays: []string{"mon", "wed", "fri"},
		Duration:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 13), out.Plan.StartDate)
	assert.Equal(t, []string{"monday", "wednesday", "friday"}, []string(out.Plan.PostingDays))
	assert.Len(t, out.Plan.Plan, 7)
	assert.Equal(t, []int{1, 3, 5}, dayNumbers(s.tasksFor(out.Plan.ID)))
	assert.Equal(t, "Week of Jan 13, 2025", out.Plan.Title)
	for _, task := range out.Tasks {
		assert.False(t, task.Completed)
		assert.Equal(t, fmt.Sprintf("Film clip %d", task.DayNumber), task.PostTitle)
	}
}

func TestGenerateWithoutPriorStartsNextMonday(t *testing.T) {
	s := newMemStore()
	svc := newPlanGeneration(t, s, weekLLM(), time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC))
	out, err := svc.Generate(context.Background(), uuid.New(), GeneratePlanInput{
		Archetypes:  []string{"entertainer"},
		PostingDays: []string{"sunday"},
		Duration:    7,
	})
	require.NoError(t, err)
	assert.Equal(t, date(2025, 1, 13), out.Plan.StartDate)
	assert.Equal(t, []int{7}, dayNumbers(s.tasksFor(out.Plan.ID)))
}

func TestGenerateUsesQuizResponseAndSettings(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	qr := &types.QuizResponse{
		ID:                 uuid.New(),
		UserID:             &userID,
		PrimaryArchetype:   "reviewer",
		SecondaryArchetype: "educator",
		SelectedTopics:     []string{"tech"},
		TimeBucket:         "2_to_5h",
		TargetAudience:     "Students",
	}
	s.quiz[qr.ID] = qr
	s.prefs[userID] = &types.UserSettings{UserID: userID, PostingDays: []string{"tuesday"}}

	llm := weekLLM()
	svc := newPlanGeneration(t, s, llm, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC))
	out, err := svc.Generate(context.Background(), userID, GeneratePlanInput{Duration: 7, QuizResponseID: uuidPtr(qr.ID)})
	require.NoError(t, err)

	assert.Equal(t, &qr.ID, out.Plan.QuizResponseID)
	assert.Equal(t, []string{"tuesday"}, []string(out.Plan.PostingDays))
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Topics: tech")
	assert.Contains(t, llm.prompts[0], "Target audience: Students")
	assert.Contains(t, llm.prompts[0], "Content ideas to build on:")
}

func TestGenerateRejectsForeignQuizResponse(t *testing.T) {
	s := newMemStore()
	owner := uuid.New()
	qr := &types.QuizResponse{ID: uuid.New(), UserID: &owner, PrimaryArchetype: "educator", SecondaryArchetype: "reviewer"}
	s.quiz[qr.ID] = qr

	svc := newPlanGeneration(t, s, weekLLM(), time.Now())
	_, err := svc.Generate(context.Background(), uuid.New(), GeneratePlanInput{Duration: 7, QuizResponseID: uuidPtr(qr.ID), PostingDays: []string{"monday"}})
	assert.True(t, apierr.IsNotFound(err))
}

func TestGenerateValidation(t *testing.T) {
	s := newMemStore()
	svc := newPlanGeneration(t, s, weekLLM(), time.Now())
	cases := map[string]GeneratePlanInput{
		"duration":      {Archetypes: []string{"educator"}, PostingDays: []string{"monday"}, Duration: 14},
		"no archetype":  {PostingDays: []string{"monday"}, Duration: 7},
		"bad archetype": {Archetypes: []string{"wizard"}, PostingDays: []string{"monday"}, Duration: 7},
		"no days":       {Archetypes: []string{"educator"}, Duration: 7},
		"bad day":       {Archetypes: []string{"educator"}, PostingDays: []string{"someday"}, Duration: 7},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Generate(context.Background(), uuid.New(), in)
			e, ok := apierr.As(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, e.Status)
		})
	}
	assert.Empty(t, s.plans)
}

func TestGenerateMapsProviderFailures(t *testing.T) {
	in := GeneratePlanInput{Archetypes: []string{"educator"}, PostingDays: []string{"monday"}, Duration: 7}
	cases := []struct {
		name   string
		llm    *fakeLLM
		status int
	}{
		{"rate limited", &fakeLLM{err: &statusErr{code: 429}}, http.StatusTooManyRequests},
		{"quota", &fakeLLM{err: &statusErr{code: 402}}, http.StatusPaymentRequired},
		{"server error", &fakeLLM{err: &statusErr{code: 500}}, http.StatusBadGateway},
		{"short plan", &fakeLLM{json: func(string, string) (map[string]any, error) { return planDays(6), nil }}, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newMemStore()
			_, err := newPlanGeneration(t, s, tc.llm, time.Now()).Generate(context.Background(), uuid.New(), in)
			e, ok := apierr.As(err)
			require.True(t, ok)
			assert.Equal(t, tc.status, e.Status)
			assert.Empty(t, s.plans)
		})
	}
}

func TestGenerateRollsBackPlanWhenTasksFail(t *testing.T) {
	s := newMemStore()
	s.fail = func(op string, _ uuid.UUID) error {
		if op == "task.create" {
			return errInjected
		}
		return nil
	}
	_, err := newPlanGeneration(t, s, weekLLM(), time.Now()).Generate(context.Background(), uuid.New(), GeneratePlanInput{
		Archetypes: []string{"educator"}, PostingDays: []string{"monday"}, Duration: 7,
	})
	require.Error(t, err)
	assert.Empty(t, s.plans)
	assert.Empty(t, s.tasks)
}

func TestParseDays(t *testing.T) {
	days, err := parseDays(planDays(30), 30)
	require.NoError(t, err)
	assert.Len(t, days, 30)

	reversed := planDays(3)
	list := reversed["days"].([]any)
	list[0], list[2] = list[2], list[0]
	days, err = parseDays(reversed, 3)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, []int{days[0].DayNumber, days[1].DayNumber, days[2].DayNumber})

	dup := planDays(2)
	dup["days"].([]any)[1].(map[string]any)["day_number"] = float64(1)
	_, err = parseDays(dup, 2)
	assert.Error(t, err)

	blank := planDays(1)
	blank["days"].([]any)[0].(map[string]any)["task"] = "  "
	_, err = parseDays(blank, 1)
	assert.Error(t, err)

	_, err = parseDays(map[string]any{}, 1)
	assert.Error(t, err)
}
