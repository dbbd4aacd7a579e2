package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type SettingsHandler struct {
	settings services.SettingsService
	schedule services.PostingScheduleService
}

func NewSettingsHandler(settings services.SettingsService, schedule services.PostingScheduleService) *SettingsHandler {
	return &SettingsHandler{settings: settings, schedule: schedule}
}

// GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	st, err := h.settings.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}

type postingDaysReq struct {
	PostingDays []string `json:"posting_days" binding:"required,min=1,max=7"`
}

// PUT /api/settings/posting-days
func (h *SettingsHandler) UpdatePostingDays(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req postingDaysReq
	if !bindJSON(c, &req) {
		return
	}
	report, err := h.schedule.UpdatePostingDays(c.Request.Context(), userID, req.PostingDays)
	if err != nil {
		if report == nil {
			response.RespondError(c, err)
			return
		}
		// Plans that failed kept their previous days; retrying converges.
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":  response.APIError{Message: "some plans could not be updated", Code: apierr.CodeInternal},
			"report": report,
		})
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}

// PUT /api/settings/notifications
func (h *SettingsHandler) UpdateNotifications(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req services.NotificationSettingsInput
	if !bindJSON(c, &req) {
		return
	}
	st, err := h.settings.UpdateNotifications(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"settings": st})
}
