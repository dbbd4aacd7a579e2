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
	"github.com/yungbote/creatorcoach-backend/internal/modules/autosave"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

const maxNotesLength = 10000

// TaskPatch holds the fields a client may change. Nil means unchanged.
type TaskPatch struct {
	Completed        *bool   `json:"completed"`
	PostTitle        *string `json:"post_title"`
	PostDescription  *string `json:"post_description"`
	Platform         *string `json:"platform"`
	ScriptCompleted  *bool   `json:"script_completed"`
	ContentCreated   *bool   `json:"content_created"`
	ContentEdited    *bool   `json:"content_edited"`
	ContentPublished *bool   `json:"content_published"`
}

type TaskService interface {
	UpdateTask(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, patch TaskPatch) (*types.PlanTask, error)
	// QueueNotes schedules a coalesced write of the task's quick notes.
	QueueNotes(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, notes string) error
	// Close flushes queued notes.
	Close(ctx context.Context) error
}

type noteEdit struct {
	userID uuid.UUID
	notes  string
}

type taskService struct {
	log      *logger.Logger
	taskRepo repos.PlanTaskRepo
	notes    *autosave.Queue[uuid.UUID, noteEdit]
	now      func() time.Time
}

func NewTaskService(log *logger.Logger, taskRepo repos.PlanTaskRepo, notesFlushDelay time.Duration) TaskService {
	ts := &taskService{
		log:      log.With("service", "TaskService"),
		taskRepo: taskRepo,
		now:      time.Now,
	}
	ts.notes = autosave.New[uuid.UUID, noteEdit](log, notesFlushDelay, ts.flushNotes)
	return ts
}

func (ts *taskService) UpdateTask(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, patch TaskPatch) (*types.PlanTask, error) {
	dbc := dbctx.Context{Ctx: ctx}
	task, err := ts.taskRepo.GetByID(dbc, userID, taskID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load task: %w", err))
	}
	if task == nil {
		return nil, apierr.NotFound("task")
	}

	updates := map[string]interface{}{}
	if patch.Completed != nil && *patch.Completed != task.Completed {
		updates["completed"] = *patch.Completed
		if *patch.Completed {
			updates["completed_at"] = ts.now().UTC()
		} else {
			updates["completed_at"] = nil
		}
	}
	setString := func(col string, v *string, max int) error {
		if v == nil {
			return nil
		}
		s := strings.TrimSpace(*v)
		if utf8.RuneCountInString(s) > max {
			return apierr.BadRequest("%s is too long", col)
		}
		updates[col] = s
		return nil
	}
	if err := setString("post_title", patch.PostTitle, 200); err != nil {
		return nil, err
	}
	if err := setString("post_description", patch.PostDescription, 5000); err != nil {
		return nil, err
	}
	if err := setString("platform", patch.Platform, 50); err != nil {
		return nil, err
	}
	setBool := func(col string, v *bool) {
		if v != nil {
			updates[col] = *v
		}
	}
	setBool("script_completed", patch.ScriptCompleted)
	setBool("content_created", patch.ContentCreated)
	setBool("content_edited", patch.ContentEdited)
	setBool("content_published", patch.ContentPublished)

	if len(updates) == 0 {
		return task, nil
	}
	updated, err := ts.taskRepo.UpdateFields(dbc, userID, taskID, updates)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("update task: %w", err))
	}
	if updated == nil {
		return nil, apierr.NotFound("task")
	}
	return updated, nil
}

func (ts *taskService) QueueNotes(ctx context.Context, userID uuid.UUID, taskID uuid.UUID, notes string) error {
	if utf8.RuneCountInString(notes) > maxNotesLength {
		return apierr.BadRequest("notes exceed %d characters", maxNotesLength)
	}
	task, err := ts.taskRepo.GetByID(dbctx.Context{Ctx: ctx}, userID, taskID)
	if err != nil {
		return apierr.Internal(fmt.Errorf("load task: %w", err))
	}
	if task == nil {
		return apierr.NotFound("task")
	}
	if err := ts.notes.Enqueue(taskID, noteEdit{userID: userID, notes: notes}); err != nil {
		if errors.Is(err, autosave.ErrClosed) {
			return apierr.New(http.StatusServiceUnavailable, apierr.CodeInternal, err)
		}
		return apierr.Internal(err)
	}
	return nil
}

func (ts *taskService) flushNotes(ctx context.Context, taskID uuid.UUID, edit noteEdit) error {
	_, err := ts.taskRepo.UpdateFields(dbctx.Context{Ctx: ctx}, edit.userID, taskID, map[string]interface{}{"notes": edit.notes})
	return err
}

func (ts *taskService) Close(ctx context.Context) error {
	return ts.notes.Close(ctx)
}
