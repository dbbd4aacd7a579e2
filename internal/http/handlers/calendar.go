package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type CalendarHandler struct {
	calendar services.CalendarService
}

func NewCalendarHandler(calendar services.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendar: calendar}
}

// GET /api/calendar?posting_days=monday,wednesday
func (h *CalendarHandler) Get(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	view, err := h.calendar.Get(c.Request.Context(), userID, splitList(c.Query("posting_days")))
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, view)
}
