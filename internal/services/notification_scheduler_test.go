package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/creatorcoach-backend/internal/domain"
	"github.com/yungbote/creatorcoach-backend/internal/platform/redis"
)

// 09:02 in New York on Monday 2025-01-13.
var nyMorning = time.Date(2025, 1, 13, 14, 2, 0, 0, time.UTC)

type notifyFixture struct {
	store  *memStore
	sender *fakeSender
	sched  NotificationScheduler
	userID uuid.UUID
	planID uuid.UUID
}

func newNotifyFixture(t *testing.T) *notifyFixture {
	t.Helper()
	s := newMemStore()
	userID := uuid.New()
	s.prefs[userID] = &types.UserSettings{
		UserID:           userID,
		Timezone:         "America/New_York",
		NotificationTime: "09:00",
		Email:            "creator@example.com",
		EmailEnabled:     true,
		EmailConsent:     true,
	}
	p := seedPlan(s, userID, date(2025, 1, 13), 7, "monday", "thursday")
	sender := &fakeSender{channel: types.ChannelEmail}
	_, planRepo, taskRepo, settingsRepo := s.repos()
	sched := NewNotificationScheduler(testLog, NotificationConfig{Tolerance: 5 * time.Minute, Concurrency: 4},
		redis.NewMemoryClaims(), settingsRepo, planRepo, taskRepo, sender)
	return &notifyFixture{store: s, sender: sender, sched: sched, userID: userID, planID: p.ID}
}

func TestNotificationSendsOncePerDay(t *testing.T) {
	f := newNotifyFixture(t)
	ctx := context.Background()

	sum, err := f.sched.Run(ctx, types.ChannelEmail, nyMorning)
	require.NoError(t, err)
	assert.Equal(t, NotificationSummary{Channel: "email", Considered: 1, Sent: 1}, *sum)
	assert.Equal(t, "2025-01-13", f.store.prefs[f.userID].LastEmailSentDate)
	require.Equal(t, 1, f.sender.count())
	assert.Equal(t, "creator@example.com|2025-01-13|task", f.sender.sent[0])

	sum, err = f.sched.Run(ctx, types.ChannelEmail, nyMorning.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Sent)
	assert.Equal(t, 1, sum.Skipped)

	// A lost stamp is still covered by the claim.
	f.store.prefs[f.userID].LastEmailSentDate = ""
	sum, err = f.sched.Run(ctx, types.ChannelEmail, nyMorning)
	require.NoError(t, err)
	assert.Equal(t, 0, sum.Sent)
	assert.Equal(t, 1, f.sender.count())
}

func TestNotificationOverlappingRunsSendOnce(t *testing.T) {
	f := newNotifyFixture(t)
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.sched.Run(context.Background(), types.ChannelEmail, nyMorning)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.sender.count())
}

func TestNotificationEligibility(t *testing.T) {
	cases := []struct {
		name  string
		now   time.Time
		setup func(f *notifyFixture)
	}{
		{"before window", nyMorning.Add(-10 * time.Minute), nil},
		{"after window", nyMorning.Add(4 * time.Minute), nil},
		{"not a posting day", nyMorning.Add(24 * time.Hour), nil},
		{"before plan", nyMorning.Add(-7 * 24 * time.Hour), nil},
		{"task completed", nyMorning, func(f *notifyFixture) {
			for _, task := range f.store.tasks {
				task.Completed = true
			}
		}},
		{"task deleted", nyMorning, func(f *notifyFixture) {
			for id, task := range f.store.tasks {
				if task.DayNumber == 1 {
					delete(f.store.tasks, id)
				}
			}
		}},
		{"consent withdrawn", nyMorning, func(f *notifyFixture) {
			f.store.prefs[f.userID].EmailConsent = false
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newNotifyFixture(t)
			if tc.setup != nil {
				tc.setup(f)
			}
			sum, err := f.sched.Run(context.Background(), types.ChannelEmail, tc.now)
			require.NoError(t, err)
			assert.Equal(t, 0, sum.Sent)
			assert.Equal(t, 0, f.sender.count())
			assert.Equal(t, sum.Considered, sum.Skipped)
		})
	}
}

func TestNotificationToleranceBoundary(t *testing.T) {
	f := newNotifyFixture(t)
	sum, err := f.sched.Run(context.Background(), types.ChannelEmail, nyMorning.Add(-7*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent, "08:55 local is within five minutes of 09:00")
}

func TestNotificationSendFailureReleasesClaim(t *testing.T) {
	f := newNotifyFixture(t)
	f.sender.err = errors.New("provider down")

	sum, err := f.sched.Run(context.Background(), types.ChannelEmail, nyMorning)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Errors)
	assert.Empty(t, f.store.prefs[f.userID].LastEmailSentDate)

	f.sender.err = nil
	sum, err = f.sched.Run(context.Background(), types.ChannelEmail, nyMorning.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Sent)
}

func TestNotificationChannels(t *testing.T) {
	f := newNotifyFixture(t)
	_, err := f.sched.Run(context.Background(), "pigeon", nyMorning)
	assert.Error(t, err)

	_, err = f.sched.Run(context.Background(), types.ChannelSMS, nyMorning)
	assert.Error(t, err, "sms has no sender configured")
}
