package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/ctxutil"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// currentUser returns the authenticated caller. Routes behind RequireAuth
// always have one; the check guards against misrouting.
func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID := ctxutil.UserID(c.Request.Context())
	if userID == uuid.Nil {
		response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "not authenticated")
		return uuid.Nil, false
	}
	return userID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.Respond(c, http.StatusBadRequest, apierr.CodeBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func queryLimit(c *gin.Context) int {
	limit := defaultListLimit
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return limit
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Respond(c, http.StatusBadRequest, apierr.CodeBadRequest, err.Error())
		return false
	}
	return true
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
