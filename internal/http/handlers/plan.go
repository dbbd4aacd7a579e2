package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type PlanHandler struct {
	plans     services.PlanService
	generator services.PlanGenerationService
}

func NewPlanHandler(plans services.PlanService, generator services.PlanGenerationService) *PlanHandler {
	return &PlanHandler{plans: plans, generator: generator}
}

type generatePlanReq struct {
	Duration       int        `json:"duration" binding:"required,oneof=7 30"`
	Archetypes     []string   `json:"archetypes" binding:"max=5"`
	Topics         []string   `json:"topics" binding:"max=20"`
	TimeBucket     string     `json:"time_bucket"`
	Gear           []string   `json:"gear" binding:"max=20"`
	TargetAudience string     `json:"target_audience" binding:"max=500"`
	SelectedIdeas  []string   `json:"selected_ideas" binding:"max=30"`
	PostingDays    []string   `json:"posting_days" binding:"max=7"`
	QuizResponseID *uuid.UUID `json:"quiz_response_id"`
	Title          string     `json:"title" binding:"max=120"`
}

// POST /api/plans/generate
func (h *PlanHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req generatePlanReq
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.generator.Generate(c.Request.Context(), userID, services.GeneratePlanInput{
		Archetypes:     req.Archetypes,
		Topics:         req.Topics,
		TimeBucket:     req.TimeBucket,
		Gear:           req.Gear,
		TargetAudience: req.TargetAudience,
		SelectedIdeas:  req.SelectedIdeas,
		PostingDays:    req.PostingDays,
		Duration:       req.Duration,
		QuizResponseID: req.QuizResponseID,
		Title:          req.Title,
	})
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, out)
}

// GET /api/plans
func (h *PlanHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	plans, err := h.plans.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"plans": plans})
}

// GET /api/plans/:id
func (h *PlanHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	out, err := h.plans.Get(c.Request.Context(), userID, planID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, out)
}

// DELETE /api/plans/:id
func (h *PlanHandler) Delete(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.plans.Delete(c.Request.Context(), userID, planID); err != nil {
		response.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
