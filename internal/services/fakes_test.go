package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
)

var errInjected = errors.New("injected failure")

// memStore backs the fake repos. InTx snapshots every table and restores the
// snapshot when fn fails, so tests can observe rollbacks.
type memStore struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	quiz  map[uuid.UUID]*types.QuizResponse
	plans map[uuid.UUID]*types.ContentPlan
	tasks map[uuid.UUID]*types.PlanTask
	ideas map[uuid.UUID]*types.GeneratedIdeas
	convs map[uuid.UUID]*types.ChatConversation
	msgs  map[uuid.UUID]*types.ChatMessage
	prefs map[uuid.UUID]*types.UserSettings

	// fail, when set, is consulted at the start of each write with the op
	// name and the row id it touches.
	fail func(op string, id uuid.UUID) error
}

func newMemStore() *memStore {
	return &memStore{
		quiz:  map[uuid.UUID]*types.QuizResponse{},
		plans: map[uuid.UUID]*types.ContentPlan{},
		tasks: map[uuid.UUID]*types.PlanTask{},
		ideas: map[uuid.UUID]*types.GeneratedIdeas{},
		convs: map[uuid.UUID]*types.ChatConversation{},
		msgs:  map[uuid.UUID]*types.ChatMessage{},
		prefs: map[uuid.UUID]*types.UserSettings{},
	}
}

func cloneMap[T any](in map[uuid.UUID]*T) map[uuid.UUID]*T {
	out := make(map[uuid.UUID]*T, len(in))
	for k, v := range in {
		c := *v
		out[k] = &c
	}
	return out
}

func (s *memStore) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	quiz, plans, tasks := cloneMap(s.quiz), cloneMap(s.plans), cloneMap(s.tasks)
	ideas, convs, msgs, prefs := cloneMap(s.ideas), cloneMap(s.convs), cloneMap(s.msgs), cloneMap(s.prefs)
	s.mu.Unlock()

	if err := fn(dbctx.Context{Ctx: ctx}); err != nil {
		s.mu.Lock()
		s.quiz, s.plans, s.tasks = quiz, plans, tasks
		s.ideas, s.convs, s.msgs, s.prefs = ideas, convs, msgs, prefs
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) check(op string, id uuid.UUID) error {
	if s.fail == nil {
		return nil
	}
	return s.fail(op, id)
}

func (s *memStore) repos() (repos.QuizResponseRepo, repos.ContentPlanRepo, repos.PlanTaskRepo, repos.UserSettingsRepo) {
	return &fakeQuizRepo{s}, &fakePlanRepo{s}, &fakeTaskRepo{s}, &fakeSettingsRepo{s}
}

// tasksFor returns copies of a plan's tasks ordered by day number.
func (s *memStore) tasksFor(planID uuid.UUID) []types.PlanTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []types.PlanTask{}
	for _, t := range s.tasks {
		if t.PlanID == planID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out
}

func (s *memStore) plan(id uuid.UUID) types.ContentPlan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.plans[id]
}

type fakeQuizRepo struct{ s *memStore }

func (r *fakeQuizRepo) Create(_ dbctx.Context, row *types.QuizResponse) (*types.QuizResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	c := *row
	r.s.quiz[row.ID] = &c
	return row, nil
}

func (r *fakeQuizRepo) GetByID(_ dbctx.Context, id uuid.UUID) (*types.QuizResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.quiz[id]
	if !ok {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakeQuizRepo) GetLatestByUserID(_ dbctx.Context, userID uuid.UUID) (*types.QuizResponse, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *types.QuizResponse
	for _, row := range r.s.quiz {
		if row.OwnedBy(userID) && (latest == nil || row.CreatedAt.After(latest.CreatedAt)) {
			latest = row
		}
	}
	if latest == nil {
		return nil, nil
	}
	c := *latest
	return &c, nil
}

func (r *fakeQuizRepo) Claim(_ dbctx.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.quiz[id]
	if !ok || row.UserID != nil {
		return false, nil
	}
	uid := userID
	row.UserID = &uid
	return true, nil
}

type fakePlanRepo struct{ s *memStore }

func (r *fakePlanRepo) Create(_ dbctx.Context, row *types.ContentPlan) (*types.ContentPlan, error) {
	if err := r.s.check("plan.create", row.ID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *row
	r.s.plans[row.ID] = &c
	return row, nil
}

func (r *fakePlanRepo) GetByID(_ dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.plans[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakePlanRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*types.ContentPlan, error) {
	return r.ListByUserIDs(dbc, []uuid.UUID{userID})
}

func (r *fakePlanRepo) ListByUserIDs(_ dbctx.Context, userIDs []uuid.UUID) ([]*types.ContentPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range userIDs {
		want[id] = true
	}
	out := []*types.ContentPlan{}
	for _, row := range r.s.plans {
		if want[row.UserID] {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

func (r *fakePlanRepo) LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ContentPlan, error) {
	row, err := r.GetByID(dbc, userID, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("record not found")
	}
	return row, nil
}

func (r *fakePlanRepo) UpdatePostingDays(_ dbctx.Context, id uuid.UUID, days []string) error {
	if err := r.s.check("plan.update_posting_days", id); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.plans[id]
	if !ok {
		return fmt.Errorf("record not found")
	}
	row.PostingDays = append([]string(nil), days...)
	return nil
}

func (r *fakePlanRepo) Delete(_ dbctx.Context, userID uuid.UUID, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.plans[id]
	if !ok || row.UserID != userID {
		return false, nil
	}
	delete(r.s.plans, id)
	return true, nil
}

type fakeTaskRepo struct{ s *memStore }

func (r *fakeTaskRepo) Create(_ dbctx.Context, rows []*types.PlanTask) ([]*types.PlanTask, error) {
	if len(rows) == 0 {
		return []*types.PlanTask{}, nil
	}
	if err := r.s.check("task.create", rows[0].PlanID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		for _, t := range r.s.tasks {
			if t.PlanID == row.PlanID && t.DayNumber == row.DayNumber {
				return nil, fmt.Errorf("%w: day %d", repos.ErrDuplicateTask, row.DayNumber)
			}
		}
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		c := *row
		r.s.tasks[row.ID] = &c
	}
	return rows, nil
}

func (r *fakeTaskRepo) GetByID(_ dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.PlanTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.tasks[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakeTaskRepo) ListByPlanIDs(_ dbctx.Context, planIDs []uuid.UUID) ([]*types.PlanTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range planIDs {
		want[id] = true
	}
	out := []*types.PlanTask{}
	for _, row := range r.s.tasks {
		if want[row.PlanID] {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *fakeTaskRepo) ListByUserID(_ dbctx.Context, userID uuid.UUID) ([]*types.PlanTask, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*types.PlanTask{}
	for _, row := range r.s.tasks {
		if row.UserID == userID {
			c := *row
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *fakeTaskRepo) UpdateFields(_ dbctx.Context, userID uuid.UUID, id uuid.UUID, updates map[string]interface{}) (*types.PlanTask, error) {
	if err := r.s.check("task.update", id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.tasks[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	for k, v := range updates {
		switch k {
		case "completed":
			row.Completed = v.(bool)
		case "completed_at":
			if v == nil {
				row.CompletedAt = nil
			} else {
				at := v.(time.Time)
				row.CompletedAt = &at
			}
		case "notes":
			row.Notes = v.(string)
		case "post_title":
			row.PostTitle = v.(string)
		case "post_description":
			row.PostDescription = v.(string)
		case "platform":
			row.Platform = v.(string)
		case "script_completed":
			row.ScriptCompleted = v.(bool)
		case "content_created":
			row.ContentCreated = v.(bool)
		case "content_edited":
			row.ContentEdited = v.(bool)
		case "content_published":
			row.ContentPublished = v.(bool)
		default:
			return nil, fmt.Errorf("unexpected column %q", k)
		}
	}
	c := *row
	return &c, nil
}

func (r *fakeTaskRepo) DeleteByIDs(_ dbctx.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.s.check("task.delete", ids[0]); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := r.s.tasks[id]; ok {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeTaskRepo) DeleteByPlanID(_ dbctx.Context, planID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, row := range r.s.tasks {
		if row.PlanID == planID {
			delete(r.s.tasks, id)
			n++
		}
	}
	return n, nil
}

type fakeSettingsRepo struct{ s *memStore }

func (r *fakeSettingsRepo) Get(_ dbctx.Context, userID uuid.UUID) (*types.UserSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.prefs[userID]
	if !ok {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakeSettingsRepo) Upsert(dbc dbctx.Context, row *types.UserSettings, columns ...string) (*types.UserSettings, error) {
	if err := r.s.check("settings.upsert", row.UserID); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	existing, ok := r.s.prefs[row.UserID]
	if !ok || len(columns) == 0 {
		c := *row
		if c.Timezone == "" {
			c.Timezone = "UTC"
		}
		if c.NotificationTime == "" {
			c.NotificationTime = "09:00"
		}
		r.s.prefs[row.UserID] = &c
	} else {
		for _, col := range columns {
			switch col {
			case "posting_days":
				existing.PostingDays = row.PostingDays
			case "timezone":
				existing.Timezone = row.Timezone
			case "notification_time":
				existing.NotificationTime = row.NotificationTime
			case "email":
				existing.Email = row.Email
			case "email_enabled":
				existing.EmailEnabled = row.EmailEnabled
			case "email_consent":
				existing.EmailConsent = row.EmailConsent
			case "phone":
				existing.Phone = row.Phone
			case "sms_enabled":
				existing.SMSEnabled = row.SMSEnabled
			case "sms_consent":
				existing.SMSConsent = row.SMSConsent
			default:
				r.s.mu.Unlock()
				return nil, fmt.Errorf("unexpected column %q", col)
			}
		}
	}
	r.s.mu.Unlock()
	return r.Get(dbc, row.UserID)
}

func (r *fakeSettingsRepo) ListNotifiable(_ dbctx.Context, channel string) ([]*types.UserSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*types.UserSettings{}
	for _, row := range r.s.prefs {
		if _, ok := row.Destination(channel); ok {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID.String() < out[j].UserID.String() })
	return out, nil
}

func (r *fakeSettingsRepo) StampSentDate(_ dbctx.Context, userID uuid.UUID, channel string, date string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.prefs[userID]
	if !ok {
		return fmt.Errorf("record not found")
	}
	if channel == types.ChannelSMS {
		row.LastSMSSentDate = date
	} else {
		row.LastEmailSentDate = date
	}
	return nil
}

type fakeIdeasRepo struct{ s *memStore }

func (r *fakeIdeasRepo) Create(_ dbctx.Context, row *types.GeneratedIdeas) (*types.GeneratedIdeas, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *row
	r.s.ideas[row.ID] = &c
	return row, nil
}

func (r *fakeIdeasRepo) GetByID(_ dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.GeneratedIdeas, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.ideas[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakeIdeasRepo) ListByUserID(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.GeneratedIdeas, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*types.GeneratedIdeas{}
	for _, row := range r.s.ideas {
		if row.UserID == userID {
			c := *row
			out = append(out, &c)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeIdeasRepo) UpdateFlags(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID, saved *bool, favorited *bool) (*types.GeneratedIdeas, error) {
	r.s.mu.Lock()
	row, ok := r.s.ideas[id]
	if !ok || row.UserID != userID {
		r.s.mu.Unlock()
		return nil, nil
	}
	if saved != nil {
		row.Saved = *saved
	}
	if favorited != nil {
		row.Favorited = *favorited
	}
	r.s.mu.Unlock()
	return r.GetByID(dbc, userID, id)
}

type fakeConvRepo struct{ s *memStore }

func (r *fakeConvRepo) Create(_ dbctx.Context, row *types.ChatConversation) (*types.ChatConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := *row
	r.s.convs[row.ID] = &c
	return row, nil
}

func (r *fakeConvRepo) GetByID(_ dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.convs[id]
	if !ok || row.UserID != userID {
		return nil, nil
	}
	c := *row
	return &c, nil
}

func (r *fakeConvRepo) ListByUserID(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.ChatConversation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*types.ChatConversation{}
	for _, row := range r.s.convs {
		if row.UserID == userID {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeConvRepo) LockByID(dbc dbctx.Context, userID uuid.UUID, id uuid.UUID) (*types.ChatConversation, error) {
	return r.GetByID(dbc, userID, id)
}

func (r *fakeConvRepo) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.convs[id]
	if !ok {
		return fmt.Errorf("record not found")
	}
	for k, v := range updates {
		switch k {
		case "next_seq":
			row.NextSeq = v.(int64)
		case "last_message_at":
			row.LastMessageAt = v.(time.Time)
		case "updated_at":
			row.UpdatedAt = v.(time.Time)
		case "title":
			row.Title = v.(string)
		default:
			return fmt.Errorf("unexpected column %q", k)
		}
	}
	return nil
}

type fakeMsgRepo struct{ s *memStore }

func (r *fakeMsgRepo) Create(_ dbctx.Context, rows []*types.ChatMessage) ([]*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range rows {
		for _, m := range r.s.msgs {
			if m.ConversationID == row.ConversationID && m.Seq == row.Seq {
				return nil, fmt.Errorf("duplicate seq %d", row.Seq)
			}
		}
		c := *row
		r.s.msgs[row.ID] = &c
	}
	return rows, nil
}

func (r *fakeMsgRepo) ListByConversation(_ dbctx.Context, conversationID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*types.ChatMessage{}
	for _, row := range r.s.msgs {
		if row.ConversationID == conversationID {
			c := *row
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// fakeLLM answers GenerateJSON with json and streams deltas for StreamText.
type fakeLLM struct {
	mu      sync.Mutex
	json    func(schemaName string, user string) (map[string]any, error)
	deltas  []string
	err     error
	prompts []string
	// beforeDelta runs before each delta is emitted.
	beforeDelta func(i int)
}

func (f *fakeLLM) GenerateJSON(_ context.Context, _ string, user string, schemaName string, _ map[string]any) (map[string]any, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, user)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.json(schemaName, user)
}

func (f *fakeLLM) StreamText(ctx context.Context, _ string, user string, onDelta func(delta string)) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, user)
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	var b strings.Builder
	for i, d := range f.deltas {
		if f.beforeDelta != nil {
			f.beforeDelta(i)
		}
		if err := ctx.Err(); err != nil {
			return b.String(), err
		}
		b.WriteString(d)
		onDelta(d)
	}
	return b.String(), nil
}

// planDays builds a valid model response for a plan of n days.
func planDays(n int) map[string]any {
	days := make([]any, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, map[string]any{
			"day_number":    float64(i),
			"task":          fmt.Sprintf("Film clip %d", i),
			"time_estimate": "30 min",
			"platform":      "TikTok",
			"tip":           "Hook in the first second",
		})
	}
	return map[string]any{"days": days}
}

type fakeSender struct {
	channel string
	mu      sync.Mutex
	sent    []string
	err     error
}

func (f *fakeSender) Channel() string { return f.channel }

func (f *fakeSender) Send(_ context.Context, to string, r Reminder) error {
	if f.err != nil {
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to+"|"+r.Date+"|"+r.TaskTitle)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}
