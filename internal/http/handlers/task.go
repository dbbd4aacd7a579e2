package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type TaskHandler struct {
	tasks services.TaskService
}

func NewTaskHandler(tasks services.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// PATCH /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var patch services.TaskPatch
	if !bindJSON(c, &patch) {
		return
	}
	task, err := h.tasks.UpdateTask(c.Request.Context(), userID, taskID, patch)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"task": task})
}

type notesReq struct {
	Notes *string `json:"notes" binding:"required"`
}

// PATCH /api/tasks/:id/notes
// The write is coalesced and happens shortly after the response.
func (h *TaskHandler) UpdateNotes(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req notesReq
	if !bindJSON(c, &req) {
		return
	}
	if err := h.tasks.QueueNotes(c.Request.Context(), userID, taskID, *req.Notes); err != nil {
		response.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
