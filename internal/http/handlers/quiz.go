package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/modules/quiz"
	"github.com/yungbote/creatorcoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type QuizHandler struct {
	quiz services.QuizService
}

func NewQuizHandler(quiz services.QuizService) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

// GET /api/quiz
func (h *QuizHandler) GetCatalog(c *gin.Context) {
	cat := h.quiz.Catalog()
	response.RespondOK(c, gin.H{"archetypes": cat.Archetypes, "questions": cat.Questions})
}

type submitQuizReq struct {
	Answers quiz.Answers `json:"answers" binding:"required"`
}

// POST /api/quiz/responses
func (h *QuizHandler) Submit(c *gin.Context) {
	var req submitQuizReq
	if !bindJSON(c, &req) {
		return
	}
	var userID *uuid.UUID
	if id := ctxutil.UserID(c.Request.Context()); id != uuid.Nil {
		userID = &id
	}
	row, err := h.quiz.Submit(c.Request.Context(), userID, req.Answers)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"quiz_response": row})
}

// POST /api/quiz/responses/:id/claim
func (h *QuizHandler) Claim(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	row, err := h.quiz.Claim(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz_response": row})
}

// GET /api/quiz/responses/latest
func (h *QuizHandler) Latest(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	row, err := h.quiz.Latest(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"quiz_response": row})
}
