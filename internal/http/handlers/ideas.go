package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type IdeasHandler struct {
	ideas services.IdeasService
}

func NewIdeasHandler(ideas services.IdeasService) *IdeasHandler {
	return &IdeasHandler{ideas: ideas}
}

// POST /api/ideas/generate
func (h *IdeasHandler) Generate(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.GenerateIdeasInput
	if !bindJSON(c, &req) {
		return
	}
	batch, err := h.ideas.Generate(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"ideas": batch})
}

// GET /api/ideas?limit=50
func (h *IdeasHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rows, err := h.ideas.List(c.Request.Context(), userID, queryLimit(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ideas": rows})
}

type ideaFlagsReq struct {
	Saved     *bool `json:"saved"`
	Favorited *bool `json:"favorited"`
}

// PATCH /api/ideas/:id
func (h *IdeasHandler) SetFlags(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req ideaFlagsReq
	if !bindJSON(c, &req) {
		return
	}
	row, err := h.ideas.SetFlags(c.Request.Context(), userID, id, req.Saved, req.Favorited)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ideas": row})
}
