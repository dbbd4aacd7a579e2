package services

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

func firstTask(s *memStore, planID uuid.UUID) uuid.UUID {
	return s.tasksFor(planID)[0].ID
}

func TestUpdateTaskTogglesCompletion(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	p := seedPlan(s, userID, date(2025, 1, 6), 7, "monday")
	_, _, taskRepo, _ := s.repos()
	svc := NewTaskService(testLog, taskRepo, time.Millisecond)
	defer svc.Close(context.Background())
	taskID := firstTask(s, p.ID)

	done, err := svc.UpdateTask(context.Background(), userID, taskID, TaskPatch{
		Completed:       boolPtr(true),
		PostTitle:       strPtr("  My first video "),
		ContentCreated:  boolPtr(true),
		PostDescription: strPtr("desc"),
	})
	require.NoError(t, err)
	assert.True(t, done.Completed)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, "My first video", done.PostTitle)
	assert.True(t, done.ContentCreated)

	undone, err := svc.UpdateTask(context.Background(), userID, taskID, TaskPatch{Completed: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, undone.Completed)
	assert.Nil(t, undone.CompletedAt)
}

func TestUpdateTaskOwnershipAndValidation(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	p := seedPlan(s, userID, date(2025, 1, 6), 7, "monday")
	_, _, taskRepo, _ := s.repos()
	svc := NewTaskService(testLog, taskRepo, time.Millisecond)
	defer svc.Close(context.Background())
	taskID := firstTask(s, p.ID)

	_, err := svc.UpdateTask(context.Background(), uuid.New(), taskID, TaskPatch{Completed: boolPtr(true)})
	assert.True(t, apierr.IsNotFound(err))

	_, err = svc.UpdateTask(context.Background(), userID, taskID, TaskPatch{PostTitle: strPtr(strings.Repeat("x", 201))})
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, e.Status)
}

func TestQueueNotesCoalescesAndFlushesOnClose(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	p := seedPlan(s, userID, date(2025, 1, 6), 7, "monday")
	_, _, taskRepo, _ := s.repos()
	svc := NewTaskService(testLog, taskRepo, time.Hour)
	taskID := firstTask(s, p.ID)
	ctx := context.Background()

	require.NoError(t, svc.QueueNotes(ctx, userID, taskID, "draft"))
	require.NoError(t, svc.QueueNotes(ctx, userID, taskID, "draft two"))
	assert.Empty(t, s.tasksFor(p.ID)[0].Notes, "nothing written before the delay")

	require.NoError(t, svc.Close(ctx))
	assert.Equal(t, "draft two", s.tasksFor(p.ID)[0].Notes)

	err := svc.QueueNotes(ctx, userID, taskID, "late")
	e, ok := apierr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, e.Status)
}

func TestQueueNotesFlushesAfterDelay(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	p := seedPlan(s, userID, date(2025, 1, 6), 7, "monday")
	_, _, taskRepo, _ := s.repos()
	svc := NewTaskService(testLog, taskRepo, 10*time.Millisecond)
	defer svc.Close(context.Background())
	taskID := firstTask(s, p.ID)

	require.NoError(t, svc.QueueNotes(context.Background(), userID, taskID, "idea: film outside"))
	require.Eventually(t, func() bool {
		return s.tasksFor(p.ID)[0].Notes == "idea: film outside"
	}, time.Second, 5*time.Millisecond)
}

func TestQueueNotesRejectsForeignTask(t *testing.T) {
	s := newMemStore()
	p := seedPlan(s, uuid.New(), date(2025, 1, 6), 7, "monday")
	_, _, taskRepo, _ := s.repos()
	svc := NewTaskService(testLog, taskRepo, time.Millisecond)
	defer svc.Close(context.Background())

	err := svc.QueueNotes(context.Background(), uuid.New(), firstTask(s, p.ID), "hi")
	assert.True(t, apierr.IsNotFound(err))
}
