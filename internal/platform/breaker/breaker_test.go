package breaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAfterFailures(t *testing.T) {
	var transitions []bool
	b := New(nil, Config{
		Name:             "sms",
		FailureThreshold: 2,
		MinRequests:      2,
		Delay:            time.Hour,
		OnStateChange:    func(_ string, open bool) { transitions = append(transitions, open) },
	})

	boom := errors.New("provider down")
	for i := 0; i < 2; i++ {
		err := b.Run(func() error { return boom })
		require.ErrorIs(t, err, boom)
	}

	calls := 0
	err := b.Run(func() error { calls++; return nil })
	assert.True(t, IsOpen(err), "expected ErrOpen, got %v", err)
	assert.Equal(t, 0, calls)
	assert.True(t, b.IsOpen())
	assert.Contains(t, transitions, true)
}

func TestBreakerPassesThroughSuccess(t *testing.T) {
	b := New(nil, DefaultConfig("email"))
	ran := false
	require.NoError(t, b.Run(func() error { ran = true; return nil }))
	assert.True(t, ran)
	assert.False(t, b.IsOpen())
}
