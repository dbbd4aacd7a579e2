package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"bad request", apierr.BadRequest("duration must be 7 or 30"), 400, "bad_request", "duration must be 7 or 30"},
		{"wrapped not found", fmt.Errorf("handler: %w", apierr.NotFound("plan")), 404, "not_found", "plan not found"},
		{"internal hides detail", apierr.Internal(errors.New("pq: connection refused")), 500, "internal_error", "internal error"},
		{"plain error", errors.New("boom"), 500, "internal_error", "internal error"},
		{"rate limited", apierr.New(http.StatusTooManyRequests, apierr.CodeRateLimited, errors.New("slow down")), 429, "rate_limited", "slow down"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondError(c, tc.err)

			require.Equal(t, tc.status, rec.Code)
			var body ErrorEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.code, body.Error.Code)
			assert.Equal(t, tc.message, body.Error.Message)
		})
	}
}
