package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/creatorcoach-backend/internal/data/repos"
	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/dbctx"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

type QuizService interface {
	Catalog() *quiz.Catalog
	// Submit scores and stores answers. userID is nil for anonymous takers.
	Submit(ctx context.Context, userID *uuid.UUID, answers quiz.Answers) (*types.QuizResponse, error)
	Claim(ctx context.Context, userID uuid.UUID, responseID uuid.UUID) (*types.QuizResponse, error)
	Latest(ctx context.Context, userID uuid.UUID) (*types.QuizResponse, error)
}

type quizService struct {
	log      *logger.Logger
	catalog  *quiz.Catalog
	quizRepo repos.QuizResponseRepo
}

func NewQuizService(log *logger.Logger, catalog *quiz.Catalog, quizRepo repos.QuizResponseRepo) QuizService {
	return &quizService{
		log:      log.With("service", "QuizService"),
		catalog:  catalog,
		quizRepo: quizRepo,
	}
}

func (qs *quizService) Catalog() *quiz.Catalog { return qs.catalog }

func (qs *quizService) Submit(ctx context.Context, userID *uuid.UUID, answers quiz.Answers) (*types.QuizResponse, error) {
	if err := qs.catalog.Check(answers); err != nil {
		return nil, apierr.BadRequest("%s", err.Error())
	}
	res := quiz.Score(qs.catalog, answers)

	scores := make(map[string]int, len(res.Scores))
	for a, s := range res.Scores {
		scores[string(a)] = s
	}
	row := &types.QuizResponse{
		ID:                 uuid.New(),
		UserID:             userID,
		Answers:            datatypes.NewJSONType(map[string]types.QuizAnswer(answers)),
		ArchetypeScores:    datatypes.NewJSONType(scores),
		PrimaryArchetype:   string(res.Primary),
		SecondaryArchetype: string(res.Secondary),
		SelectedTopics:     res.Topics,
		TimeBucket:         res.TimeBucket,
		Gear:               res.Gear,
		TargetAudience:     res.TargetAudience,
		PlatformBias:       res.PlatformBias,
	}
	created, err := qs.quizRepo.Create(dbctx.Context{Ctx: ctx}, row)
	if err != nil {
		qs.log.Error("store quiz response failed", "error", err)
		return nil, apierr.Internal(fmt.Errorf("store quiz response: %w", err))
	}
	qs.log.Info("quiz scored", "primary", created.PrimaryArchetype, "secondary", created.SecondaryArchetype, "anonymous", userID == nil)
	return created, nil
}

func (qs *quizService) Claim(ctx context.Context, userID uuid.UUID, responseID uuid.UUID) (*types.QuizResponse, error) {
	dbc := dbctx.Context{Ctx: ctx}
	row, err := qs.quizRepo.GetByID(dbc, responseID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load quiz response: %w", err))
	}
	if row == nil {
		return nil, apierr.NotFound("quiz response")
	}
	if row.OwnedBy(userID) {
		return row, nil
	}
	if !row.Anonymous() {
		return nil, apierr.NotFound("quiz response")
	}
	ok, err := qs.quizRepo.Claim(dbc, responseID, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("claim quiz response: %w", err))
	}
	if !ok {
		// Lost a race with another claimant.
		return nil, apierr.Conflict("quiz response already claimed")
	}
	row.UserID = &userID
	return row, nil
}

func (qs *quizService) Latest(ctx context.Context, userID uuid.UUID) (*types.QuizResponse, error) {
	row, err := qs.quizRepo.GetLatestByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load quiz response: %w", err))
	}
	if row == nil {
		return nil, apierr.NotFound("quiz response")
	}
	return row, nil
}

// ownedQuizResponse loads a response the caller owns, or the caller's latest
// when id is nil. A missing or foreign response is reported as not found.
func ownedQuizResponse(ctx context.Context, quizRepo repos.QuizResponseRepo, userID uuid.UUID, id *uuid.UUID) (*types.QuizResponse, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var (
		row *types.QuizResponse
		err error
	)
	if id != nil {
		row, err = quizRepo.GetByID(dbc, *id)
	} else {
		row, err = quizRepo.GetLatestByUserID(dbc, userID)
	}
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("load quiz response: %w", err))
	}
	if row == nil || !row.OwnedBy(userID) {
		return nil, apierr.NotFound("quiz response")
	}
	return row, nil
}
