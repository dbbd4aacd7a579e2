package sendgrid

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

func newTestClient(t *testing.T, srv *httptest.Server, retries int) *client {
	t.Helper()
	c, err := New(logger.Nop(), Config{
		APIKey:           "sg-test",
		BaseURL:          srv.URL,
		DefaultFromEmail: "coach@example.com",
		MaxRetries:       retries,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cl := c.(*client)
	cl.baseDelay = time.Millisecond
	return cl
}

func TestSendBuildsMailRequest(t *testing.T) {
	var got mailSendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/mail/send" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sg-test" {
			t.Errorf("missing auth header")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Message-Id", "msg-1")
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 0)
	res, err := c.Send(context.Background(), SendEmailRequest{
		To:      []EmailAddress{{Email: "user@example.com"}},
		Subject: "Today's task",
		Text:    "Film your intro",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.StatusCode != http.StatusAccepted || res.MessageID != "msg-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got.From.Email != "coach@example.com" {
		t.Fatalf("default from not applied: %+v", got.From)
	}
	if len(got.Personalizations) != 1 || got.Personalizations[0].To[0].Email != "user@example.com" {
		t.Fatalf("unexpected personalizations: %+v", got.Personalizations)
	}
}

func TestSendRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 2)
	if _, err := c.Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "user@example.com"}}, Subject: "s", Text: "t",
	}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestSendSurfacesClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errors":[{"message":"invalid to"}]}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, 3)
	_, err := c.Send(context.Background(), SendEmailRequest{
		To: []EmailAddress{{Email: "bad"}}, Subject: "s", Text: "t",
	})
	var he *HTTPError
	if !errors.As(err, &he) || he.HTTPStatusCode() != http.StatusBadRequest {
		t.Fatalf("expected HTTPError 400, got %v", err)
	}
}
