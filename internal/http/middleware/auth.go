package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/creatorcoach-backend/internal/http/response"
	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
	"github.com/yungbote/creatorcoach-backend/internal/platform/ctxutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
	"github.com/yungbote/creatorcoach-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), authService: authService}
}

// RequireAuth rejects the request with 401 unless it carries a valid bearer token.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("token rejected", "error", err)
			response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		if ctxutil.UserID(ctx) == uuid.Nil {
			response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. A present but invalid token is still a 401.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "missing or invalid token")
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

const headerCronSecret = "X-Cron-Secret"

// RequireCronSecret guards scheduler trigger endpoints. With no secret
// configured every request is refused.
func RequireCronSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(headerCronSecret)
		if secret == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			response.Respond(c, http.StatusUnauthorized, apierr.CodeUnauthorized, "invalid cron secret")
			return
		}
		c.Next()
	}
}
