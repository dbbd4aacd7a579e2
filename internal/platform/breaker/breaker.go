package breaker

import (
	"errors"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"

	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

// ErrOpen is returned while the breaker rejects calls.
var ErrOpen = circuitbreaker.ErrOpen

type Config struct {
	Name string
	// FailureThreshold failures within MinRequests executions open the breaker.
	FailureThreshold uint
	MinRequests      uint
	// Delay is how long the breaker stays open before probing again.
	Delay            time.Duration
	SuccessThreshold uint
	// OnStateChange is called with the breaker name and whether it is now open.
	OnStateChange func(name string, open bool)
}

func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		FailureThreshold: 5,
		MinRequests:      10,
		Delay:            30 * time.Second,
		SuccessThreshold: 1,
	}
}

type Breaker struct {
	name string
	cb   circuitbreaker.CircuitBreaker[any]
}

func New(log *logger.Logger, cfg Config) *Breaker {
	if cfg.Name == "" {
		cfg.Name = "breaker"
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 10
	}
	if cfg.FailureThreshold == 0 || cfg.FailureThreshold > cfg.MinRequests {
		cfg.FailureThreshold = cfg.MinRequests / 2
		if cfg.FailureThreshold == 0 {
			cfg.FailureThreshold = 1
		}
	}
	if cfg.Delay <= 0 {
		cfg.Delay = 30 * time.Second
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 1
	}

	builder := circuitbreaker.NewBuilder[any]().
		WithFailureThresholdRatio(cfg.FailureThreshold, cfg.MinRequests).
		WithDelay(cfg.Delay).
		WithSuccessThreshold(cfg.SuccessThreshold).
		OnStateChanged(func(event circuitbreaker.StateChangedEvent) {
			open := event.NewState == circuitbreaker.OpenState
			if log != nil {
				log.Warn("circuit breaker state change",
					"breaker", cfg.Name,
					"from", stateName(event.OldState),
					"to", stateName(event.NewState),
				)
			}
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(cfg.Name, open)
			}
		})

	return &Breaker{name: cfg.Name, cb: builder.Build()}
}

// Run executes fn through the breaker. Calls are rejected with ErrOpen while open.
func (b *Breaker) Run(fn func() error) error {
	_, err := failsafe.With(b.cb).Get(func() (any, error) {
		return nil, fn()
	})
	return err
}

func (b *Breaker) Name() string { return b.name }

func (b *Breaker) IsOpen() bool { return b.cb.IsOpen() }

func IsOpen(err error) bool { return errors.Is(err, ErrOpen) }

func stateName(s circuitbreaker.State) string {
	switch s {
	case circuitbreaker.OpenState:
		return "open"
	case circuitbreaker.HalfOpenState:
		return "half-open"
	default:
		return "closed"
	}
}
