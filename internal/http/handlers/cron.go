package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type CronHandler struct {
	notifications services.NotificationScheduler
	now           func() time.Time
}

func NewCronHandler(notifications services.NotificationScheduler) *CronHandler {
	return &CronHandler{notifications: notifications, now: time.Now}
}

// POST /api/cron/notifications/:channel
func (h *CronHandler) RunNotifications(c *gin.Context) {
	summary, err := h.notifications.Run(c.Request.Context(), c.Param("channel"), h.now())
	if err != nil {
		response.RespondError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"summary": summary})
}
