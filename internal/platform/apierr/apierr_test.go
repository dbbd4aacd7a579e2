package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type providerErr struct {
	status int
	body   string
}

func (e *providerErr) Error() string       { return fmt.Sprintf("provider status=%d body=%s", e.status, e.body) }
func (e *providerErr) HTTPStatusCode() int { return e.status }

func TestUpstreamClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"rate limit", &providerErr{status: 429, body: "slow down"}, http.StatusTooManyRequests, CodeRateLimited},
		{"quota in 429 body", &providerErr{status: 429, body: `{"error":{"code":"insufficient_quota"}}`}, http.StatusPaymentRequired, CodeQuotaExhausted},
		{"payment required", &providerErr{status: 402}, http.StatusPaymentRequired, CodeQuotaExhausted},
		{"server error", fmt.Errorf("generate: %w", &providerErr{status: 500}), http.StatusBadGateway, CodeUpstream},
		{"transport", errors.New("connection reset"), http.StatusBadGateway, CodeUpstream},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Upstream(tc.err)
			if got.Status != tc.wantStatus || got.Code != tc.wantCode {
				t.Fatalf("Upstream(%v) = %d/%s, want %d/%s", tc.err, got.Status, got.Code, tc.wantStatus, tc.wantCode)
			}
			if !errors.Is(got, tc.err) {
				t.Fatalf("expected wrapped error to be preserved")
			}
		})
	}
}

func TestUpstreamKeepsExistingAPIError(t *testing.T) {
	orig := BadRequest("bad %s", "input")
	if got := Upstream(fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("expected original error to pass through")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load: %w", NotFound("plan"))) {
		t.Fatalf("expected not found")
	}
	if IsNotFound(Internal(errors.New("x"))) {
		t.Fatalf("internal is not a not-found")
	}
}
