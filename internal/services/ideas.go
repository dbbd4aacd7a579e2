package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/platform/openai"
)

const (
	defaultIdeaCount = 10
	maxIdeaCount     = 20
)

type GenerateIdeasInput struct {
	QuizResponseID *uuid.UUID `json:"quiz_response_id"`
	Count          int        `json:"count"`
	Focus          string     `json:"focus"`
}

type IdeasService interface {
	Generate(ctx context.Context, userID uuid.UUID, in GenerateIdeasInput) (*types.GeneratedIdeas, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.GeneratedIdeas, error)
	SetFlags(ctx context.Context, userID uuid.UUID, id uuid.UUID, saved *bool, favorited *bool) (*types.GeneratedIdeas, error)
}

type ideasService struct {
	log       *logger.Logger
	catalog   *quiz.Catalog
	llm       openai.Client
	quizRepo  repos.QuizResponseRepo
	ideasRepo repos.GeneratedIdeasRepo
}

func NewIdeasService(log *logger.Logger, catalog *quiz.Catalog, llm openai.Client, quizRepo repos.QuizResponseRepo, ideasRepo repos.GeneratedIdeasRepo) IdeasService {
	return &ideasService{
		log:       log.With("service", "IdeasService"),
		catalog:   catalog,
		llm:       llm,
		quizRepo:  quizRepo,
		ideasRepo: ideasRepo,
	}
}

const ideasSystemPrompt = `You brainstorm short-form content ideas for new creators.
Each idea needs a catchy title, a one or two sentence description, a format (for example talking head, tutorial, skit, vlog, review), the best platform for it and an opening hook line.
Match the creator's archetype, topics, audience and gear. Return only JSON matching the schema.`

var ideasSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"ideas"},
	"properties": map[string]any{
		"ideas": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"title", "description", "format", "platform", "hook"},
				"properties": map[string]any{
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
					"format":      map[string]any{"type": "string"},
					"platform":    map[string]any{"type": "string"},
					"hook":        map[string]any{"type": "string"},
				},
			},
		},
	},
}

func (is *ideasService) Generate(ctx context.Context, userID uuid.UUID, in GenerateIdeasInput) (*types.GeneratedIdeas, error) {
	count := in.Count
	if count == 0 {
		count = defaultIdeaCount
	}
	if count < 1 || count > maxIdeaCount {
		return nil, apierr.BadRequest("count must be between 1 and %d", maxIdeaCount)
	}
	qr, err := ownedQuizResponse(ctx, is.quizRepo, userID, in.QuizResponseID)
	if err != nil {
		if e, ok := apierr.As(err); ok && e.Status == http.StatusNotFound && in.QuizResponseID == nil {
			return nil, apierr.BadRequest("take the quiz before generating ideas")
		}
		return nil, err
	}
	if is.llm == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, apierr.CodeUpstream, fmt.Errorf("idea generation is not configured"))
	}

	obj, err := is.llm.GenerateJSON(ctx, ideasSystemPrompt, is.userPrompt(qr, count, in.Focus), "content_ideas", ideasSchema)
	if err != nil {
		is.log.Warn("idea generation failed", "user_id", userID, "error", err)
		return nil, apierr.Upstream(err)
	}
	ideas, err := parseIdeas(obj, count)
	if err != nil {
		return nil, apierr.New(http.StatusBadGateway, apierr.CodeUpstream, fmt.Errorf("invalid ideas from model: %w", err))
	}

	row := &types.GeneratedIdeas{
		ID:             uuid.New(),
		UserID:         userID,
		QuizResponseID: &qr.ID,
		Ideas:          ideas,
	}
	created, err := is.ideasRepo.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("store ideas: %w", err))
	}
	return created, nil
}

func (is *ideasService) userPrompt(qr *types.QuizResponse, count int, focus string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d ideas.\n", count)
	for _, name := range []string{qr.PrimaryArchetype, qr.SecondaryArchetype} {
		if a, ok := quiz.ParseArchetype(name); ok {
			if p, ok := is.catalog.Profile(a); ok {
				fmt.Fprintf(&b, "Archetype: %s. %s\n", p.Name, p.Description)
			}
		}
	}
	if len(qr.SelectedTopics) > 0 {
		fmt.Fprintf(&b, "Topics: %s\n", strings.Join(qr.SelectedTopics, ", "))
	}
	if qr.TargetAudience != "" {
		fmt.Fprintf(&b, "Audience: %s\n", qr.TargetAudience)
	}
	if len(qr.Gear) > 0 {
		fmt.Fprintf(&b, "Gear: %s\n", strings.Join(qr.Gear, ", "))
	}
	if len(qr.PlatformBias) > 0 {
		fmt.Fprintf(&b, "Preferred platforms: %s\n", strings.Join(qr.PlatformBias, ", "))
	}
	if qr.TimeBucket != "" {
		fmt.Fprintf(&b, "Weekly time budget: %s\n", qr.TimeBucket)
	}
	if f := strings.TrimSpace(focus); f != "" {
		fmt.Fprintf(&b, "Focus on: %s\n", f)
	}
	return b.String()
}

func parseIdeas(obj map[string]any, count int) ([]types.Idea, error) {
	buf, err := json.Marshal(obj["ideas"])
	if err != nil {
		return nil, err
	}
	var raw []types.Idea
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, fmt.Errorf("decode ideas: %w", err)
	}
	out := make([]types.Idea, 0, count)
	for _, idea := range raw {
		idea.Title = strings.TrimSpace(idea.Title)
		if idea.Title == "" {
			continue
		}
		out = append(out, idea)
		if len(out) == count {
			break
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no usable ideas")
	}
	return out, nil
}

func (is *ideasService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.GeneratedIdeas, error) {
	rows, err := is.ideasRepo.ListByUserID(dbctx.Context{Ctx: ctx}, userID, limit)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("list ideas: %w", err))
	}
	return rows, nil
}

func (is *ideasService) SetFlags(ctx context.Context, userID uuid.UUID, id uuid.UUID, saved *bool, favorited *bool) (*types.GeneratedIdeas, error) {
	row, err := is.ideasRepo.UpdateFlags(dbctx.Context{Ctx: ctx}, userID, id, saved, favorited)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("update ideas: %w", err))
	}
	if row == nil {
		return nil, apierr.NotFound("ideas")
	}
	return row, nil
}
