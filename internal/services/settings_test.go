package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/creatorcoach-backend/internal/platform/apierr"
)

func TestSettingsDefaultsAndUpdate(t *testing.T) {
	s := newMemStore()
	_, _, _, settingsRepo := s.repos()
	svc := NewSettingsService(testLog, settingsRepo)
	userID := uuid.New()
	ctx := context.Background()

	st, err := svc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "UTC", st.Timezone)
	assert.Equal(t, "09:00", st.NotificationTime)
	assert.False(t, st.EmailEnabled)

	st, err = svc.UpdateNotifications(ctx, userID, NotificationSettingsInput{
		Timezone:         strPtr("Europe/Berlin"),
		NotificationTime: strPtr("07:30"),
		Email:            strPtr("Creator <me@example.com>"),
		EmailEnabled:     boolPtr(true),
		EmailConsent:     boolPtr(true),
		Phone:            strPtr("+1 415 555 0100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", st.Timezone)
	assert.Equal(t, "07:30", st.NotificationTime)
	assert.Equal(t, "me@example.com", st.Email)
	assert.Equal(t, "+14155550100", st.Phone)
	dest, ok := st.Destination("email")
	assert.True(t, ok)
	assert.Equal(t, "me@example.com", dest)
}

func TestSettingsKeepsPostingDays(t *testing.T) {
	s := newMemStore()
	userID := uuid.New()
	_, _, _, settingsRepo := s.repos()
	_, err := newPostingSchedule(s).UpdatePostingDays(context.Background(), userID, []string{"monday"})
	require.NoError(t, err)

	st, err := NewSettingsService(testLog, settingsRepo).UpdateNotifications(context.Background(), userID, NotificationSettingsInput{
		NotificationTime: strPtr("18:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"monday"}, []string(st.PostingDays))
	assert.Equal(t, "18:00", st.NotificationTime)
}

func TestSettingsValidation(t *testing.T) {
	cases := map[string]NotificationSettingsInput{
		"timezone":       {Timezone: strPtr("Mars/Olympus")},
		"time":           {NotificationTime: strPtr("9am")},
		"email":          {Email: strPtr("not-an-email")},
		"phone":          {Phone: strPtr("555-0100")},
		"enable no addr": {SMSEnabled: boolPtr(true)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			s := newMemStore()
			_, _, _, settingsRepo := s.repos()
			_, err := NewSettingsService(testLog, settingsRepo).UpdateNotifications(context.Background(), uuid.New(), in)
			e, ok := apierr.As(err)
			require.True(t, ok)
			assert.Equal(t, http.StatusBadRequest, e.Status)
			assert.Empty(t, s.prefs)
		})
	}
}
