package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yungbote/creatorcoach-backend/internal/platform/httpx"
)

const (
	CodeBadRequest     = "bad_request"
	CodeUnauthorized   = "unauthorized"
	CodeForbidden      = "forbidden"
	CodeNotFound       = "not_found"
	CodeConflict       = "conflict"
	CodeInternal       = "internal_error"
	CodeRateLimited    = "rate_limited"
	CodeQuotaExhausted = "quota_exhausted"
	CodeUpstream       = "upstream_error"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeBadRequest, fmt.Errorf(format, args...))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func NotFound(what string) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf("%s not found", what))
}

func Conflict(format string, args ...any) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

func Internal(err error) *Error {
	return New(http.StatusInternalServerError, CodeInternal, err)
}

// Upstream classifies a provider failure. Rate limits become 429, exhausted
// quota or billing problems become 402, anything else is a 502.
func Upstream(err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return existing
	}
	status := httpx.StatusOf(err)
	msg := strings.ToLower(err.Error())
	switch {
	case status == http.StatusPaymentRequired,
		strings.Contains(msg, "insufficient_quota"),
		strings.Contains(msg, "quota exceeded"),
		strings.Contains(msg, "billing"):
		return New(http.StatusPaymentRequired, CodeQuotaExhausted, err)
	case status == http.StatusTooManyRequests:
		return New(http.StatusTooManyRequests, CodeRateLimited, err)
	default:
		return New(http.StatusBadGateway, CodeUpstream, err)
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e != nil {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err carries a 404.
func IsNotFound(err error) bool {
	e, ok := As(err)
	return ok && e.Status == http.StatusNotFound
}
