package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope. An *apierr.Error anywhere in err's
// chain supplies the status and code; anything else is a 500 with a generic
// message.
func RespondError(c *gin.Context, err error) {
	if e, ok := apierr.As(err); ok {
		status := e.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		msg := e.Error()
		if status >= http.StatusInternalServerError && e.Code == apierr.CodeInternal {
			msg = "internal error"
		}
		Respond(c, status, e.Code, msg)
		return
	}
	Respond(c, http.StatusInternalServerError, apierr.CodeInternal, "internal error")
}

func Respond(c *gin.Context, status int, code string, msg string) {
	if msg == "" {
		msg = "unknown error"
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
