package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/modules/schedule"
	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/openai"
)

type GeneratePlanInput struct {
	Archetypes     []string   `json:"archetypes"`
	Topics         []string   `json:"topics"`
	TimeBucket     string     `json:"time_bucket"`
	Gear           []string   `json:"gear"`
	TargetAudience string     `json:"target_audience"`
	SelectedIdeas  []string   `json:"selected_ideas"`
	PostingDays    []string   `json:"posting_days"`
	Duration       int        `json:"duration"`
	QuizResponseID *uuid.UUID `json:"quiz_response_id"`
	Title          string     `json:"title"`
}

type PlanWithTasks struct {
	Plan  *types.ContentPlan `json:"plan"`
	Tasks []*types.PlanTask  `json:"tasks"`
}

type PlanGenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, in GeneratePlanInput) (*PlanWithTasks, error)
}

type planGenerationService struct {
	log          *logger.Logger
	tx           dbctx.Transactor
	catalog      *quiz.Catalog
	llm          openai.Client
	quizRepo     repos.QuizResponseRepo
	planRepo     repos.ContentPlanRepo
	taskRepo     repos.PlanTaskRepo
	settingsRepo repos.UserSettingsRepo
	now          func() time.Time
}

func NewPlanGenerationService(
	log *logger.Logger,
	tx dbctx.Transactor,
	catalog *quiz.Catalog,
	llm openai.Client,
	quizRepo repos.QuizResponseRepo,
	planRepo repos.ContentPlanRepo,
	taskRepo repos.PlanTaskRepo,
	settingsRepo repos.UserSettingsRepo,
) PlanGenerationService {
	return &planGenerationService{
		log:          log.With("service", "PlanGenerationService"),
		tx:           tx,
		catalog:      catalog,
		llm:          llm,
		quizRepo:     quizRepo,
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// planRequest is the fully resolved generation input.
type planRequest struct {
	archetypes     []quiz.Archetype
	topics         []string
	timeBucket     string
	gear           []string
	targetAudience string
	ideas          []string
	postingDays    []string
	duration       int
	quizResponseID *uuid.UUID
	startDate      time.Time
	title          string
}

func (s *planGenerationService) Generate(ctx context.Context, userID uuid.UUID, in GeneratePlanInput) (*PlanWithTasks, error) {
	start := time.Now()
	req, err := s.resolve(ctx, userID, in)
	if err != nil {
		observability.Current().IncPlanGeneration(in.Duration, "invalid")
		return nil, err
	}

	days, err := s.generateDays(ctx, req)
	if err != nil {
		observability.Current().IncPlanGeneration(req.duration, "llm_error")
		s.log.Warn("plan generation failed", "user_id", userID, "duration", req.duration, "error", err)
		return nil, err
	}

	out, err := s.persist(ctx, userID, req, days)
	if err != nil {
		observability.Current().IncPlanGeneration(req.duration, "persist_error")
		s.log.Error("plan persist failed", "user_id", userID, "error", err)
		return nil, apierr.Internal(fmt.Errorf("store plan: %w", err))
	}
	observability.Current().IncPlanGeneration(req.duration, "ok")
	s.log.Info("plan generated",
		"user_id", userID,
		"plan_id", out.Plan.ID,
		"start_date", out.Plan.StartDate.Format(time.DateOnly),
		"duration", req.duration,
		"tasks", len(out.Tasks),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

func (s *planGenerationService) resolve(ctx context.Context, userID uuid.UUID, in GeneratePlanInput) (*planRequest, error) {
	if in.Duration != types.DurationWeek && in.Duration != types.DurationMonth {
		return nil, apierr.BadRequest("duration must be %d or %d", types.DurationWeek, types.DurationMonth)
	}
	req := &planRequest{
		duration:       in.Duration,
		topics:         trimAll(in.Topics),
		timeBucket:     strings.TrimSpace(in.TimeBucket),
		gear:           trimAll(in.Gear),
		targetAudience: strings.TrimSpace(in.TargetAudience),
		ideas:          trimAll(in.SelectedIdeas),
		title:          strings.TrimSpace(in.Title),
	}
	dbc := dbctx.Context{Ctx: ctx}

	names := trimAll(in.Archetypes)
	if in.QuizResponseID != nil {
		qr, err := ownedQuizResponse(ctx, s.quizRepo, userID, in.QuizResponseID)
		if err != nil {
			return nil, err
		}
		req.quizResponseID = &qr.ID
		if len(names) == 0 {
			names = []string{qr.PrimaryArchetype, qr.SecondaryArchetype}
		}
		if len(req.topics) == 0 {
			req.topics = qr.SelectedTopics
		}
		if req.timeBucket == "" {
			req.timeBucket = qr.TimeBucket
		}
		if len(req.gear) == 0 {
			req.gear = qr.Gear
		}
		if req.targetAudience == "" {
			req.targetAudience = qr.TargetAudience
		}
	}
	if len(names) == 0 {
		return nil, apierr.BadRequest("at least one archetype is required")
	}
	for _, n := range names {
		a, ok := quiz.ParseArchetype(n)
		if !ok {
			return nil, apierr.BadRequest("unknown archetype %q", n)
		}
		req.archetypes = append(req.archetypes, a)
	}
	if len(req.ideas) == 0 {
		req.ideas = s.catalog.DefaultIdeas(req.archetypes[0])
	}

	postingDays := in.PostingDays
	if len(postingDays) == 0 {
		st, err := s.settingsRepo.Get(dbc, userID)
		if err != nil {
			return nil, apierr.Internal(fmt.Errorf("load settings: %w", err))
		}
		if st != nil {
			postingDays = st.PostingDays
		}
	}
	normalized, err := schedule.NormalizeDays(postingDays)
	if err != nil {
		return nil, apierr.BadRequest("posting_days: %s", err.Error())
	}
	req.postingDays = normalized

	existing, err := s.planRepo.ListByUserID(dbc, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list plans: %w", err))
	}
	spans := make([]schedule.Span, 0, len(existing))
	for _, p := range existing {
		spans = append(spans, schedule.Span{Start: p.StartDate, Duration: p.Duration})
	}
	req.startDate = schedule.NextPlanStart(s.now(), schedule.LatestSpan(spans))
	if req.title == "" {
		req.title = defaultPlanTitle(req.duration, req.startDate)
	}
	return req, nil
}

func defaultPlanTitle(duration int, start time.Time) string {
	if duration == types.DurationWeek {
		return fmt.Sprintf("Week of %s", start.Format("Jan 2, 2006"))
	}
	return fmt.Sprintf("30 days from %s", start.Format("Jan 2, 2006"))
}

const planSystemPrompt = `You are a content strategy coach for new creators.
Write a day-by-day posting plan that fits the creator's archetype, topics, time budget and gear.
Every day gets one concrete, filmable task, a realistic time estimate and one practical tip.
Suggest a platform for each day from the creator's preferred platforms when known.
Return only JSON matching the schema.`

func planSchema(duration int) map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []string{"days"},
		"properties": map[string]any{
			"days": map[string]any{
				"type":     "array",
				"minItems": duration,
				"maxItems": duration,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"day_number", "task", "time_estimate", "platform", "tip"},
					"properties": map[string]any{
						"day_number":    map[string]any{"type": "integer"},
						"task":          map[string]any{"type": "string"},
						"time_estimate": map[string]any{"type": "string"},
						"platform":      map[string]any{"type": "string"},
						"tip":           map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func (s *planGenerationService) userPrompt(req *planRequest) string {
	var b strings.Builder
	archetypes := make([]string, len(req.archetypes))
	for i, a := range req.archetypes {
		archetypes[i] = string(a)
		if p, ok := s.catalog.Profile(a); ok {
			archetypes[i] = fmt.Sprintf("%s (%s)", p.Name, p.Description)
		}
	}
	fmt.Fprintf(&b, "Plan length: %d days starting %s (%s).\n", req.duration, req.startDate.Format(time.DateOnly), schedule.WeekdayOf(req.startDate))
	fmt.Fprintf(&b, "Creator archetypes, strongest first: %s\n", strings.Join(archetypes, "; "))
	fmt.Fprintf(&b, "Posting days: %s\n", strings.Join(req.postingDays, ", "))
	if len(req.topics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(req.topics, ", "))
	}
	if req.timeBucket != "" {
		fmt.Fprintf(&b, "Weekly time budget: %s\n", req.timeBucket)
	}
	if len(req.gear) > 0 {
		fmt.Fprintf(&b, "Gear: %s\n", strings.Join(req.gear, ", "))
	}
	if req.targetAudience != "" {
		fmt.Fprintf(&b, "Target audience: %s\n", req.targetAudience)
	}
	if len(req.ideas) > 0 {
		b.WriteString("Content ideas to build on:\n")
		for _, idea := range req.ideas {
			fmt.Fprintf(&b, "- %s\n", idea)
		}
	}
	fmt.Fprintf(&b, "Return exactly %d days numbered 1 to %d. Non-posting days should be light prep or engagement tasks.", req.duration, req.duration)
	return b.String()
}

func (s *planGenerationService) generateDays(ctx context.Context, req *planRequest) ([]types.DayDescriptor, error) {
	if s.llm == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeUpstream, fmt.Errorf("plan generation is not configured"))
	}
	obj, err := s.llm.GenerateJSON(ctx, planSystemPrompt, s.userPrompt(req), "content_plan", planSchema(req.duration))
	if err != nil {
		return nil, apierr.Upstream(err)
	}
	days, err := parseDays(obj, req.duration)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("invalid plan from model: %w", err))
	}
	return days, nil
}

// parseDays decodes and validates the model's days: exactly duration
// entries, numbered 1..duration once each, with the required text present.
func parseDays(obj map[string]any, duration int) ([]types.DayDescriptor, error) {
	raw, ok := obj["days"]
	if !ok {
		return nil, fmt.Errorf("missing days")
	}
	buf, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var days []types.DayDescriptor
	if err := json.Unmarshal(buf, &days); err != nil {
		return nil, fmt.Errorf("decode days: %w", err)
	}
	if len(days) != duration {
		return nil, fmt.Errorf("expected %d days, got %d", duration, len(days))
	}
	seen := make(map[int]bool, duration)
	for i := range days {
		d := &days[i]
		d.Task = strings.TrimSpace(d.Task)
		d.TimeEstimate = strings.TrimSpace(d.TimeEstimate)
		d.Tip = strings.TrimSpace(d.Tip)
		d.Platform = strings.TrimSpace(d.Platform)
		if d.DayNumber < 1 || d.DayNumber > duration {
			return nil, fmt.Errorf("day_number %d out of range", d.DayNumber)
		}
		if seen[d.DayNumber] {
			return nil, fmt.Errorf("day_number %d repeated", d.DayNumber)
		}
		seen[d.DayNumber] = true
		if d.Task == "" || d.TimeEstimate == "" || d.Tip == "" {
			return nil, fmt.Errorf("day %d is missing task, time_estimate or tip", d.DayNumber)
		}
	}
	sortDescriptors(days)
	return days, nil
}

func sortDescriptors(days []types.DayDescriptor) {
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
}

func (s *planGenerationService) persist(ctx context.Context, userID uuid.UUID, req *planRequest, days []types.DayDescriptor) (*PlanWithTasks, error) {
	plan := &types.ContentPlan{
		ID:             uuid.New(),
		UserID:         userID,
		QuizResponseID: req.quizResponseID,
		Title:          req.title,
		StartDate:      req.startDate,
		Duration:       req.duration,
		PostingDays:    req.postingDays,
		Plan:           days,
	}
	set := schedule.SetFromStored(req.postingDays)
	tasks := []*types.PlanTask{}
	for _, d := range days {
		if schedule.IsPostingDay(plan.StartDate, d.DayNumber, set) {
			tasks = append(tasks, types.NewDefaultTask(plan, d))
		}
	}

	out := &PlanWithTasks{}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		created, err := s.planRepo.Create(dbc, plan)
		if err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		createdTasks, err := s.taskRepo.Create(dbc, tasks)
		if err != nil {
			return fmt.Errorf("create tasks: %w", err)
		}
		out.Plan = created
		out.Tasks = createdTasks
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func trimAll(in []string) []string {
	out := []string{}
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
