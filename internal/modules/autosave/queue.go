package autosave

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yungbote/creatorcoach-backend/internal/observability"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

var ErrClosed = errors.New("autosave queue closed")

// FlushFunc persists the latest value for key.
type FlushFunc[K comparable, V any] func(ctx context.Context, key K, value V) error

type pending[V any] struct {
	value V
	due   time.Time
}

// Queue coalesces writes per key. The first edit to a key schedules a write
// after the flush delay; later edits before that write only replace the value.
// One goroutine performs every write.
type Queue[K comparable, V any] struct {
	log          *logger.Logger
	delay        time.Duration
	flush        FlushFunc[K, V]
	flushTimeout time.Duration

	mu      sync.Mutex
	pending map[K]*pending[V]
	closed  bool

	kick      chan struct{}
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func New[K comparable, V any](log *logger.Logger, delay time.Duration, flush FlushFunc[K, V]) *Queue[K, V] {
	if log == nil {
		log = logger.Nop()
	}
	if delay <= 0 {
		delay = 750 * time.Millisecond
	}
	q := &Queue[K, V]{
		log:          log.With("component", "AutosaveQueue"),
		delay:        delay,
		flush:        flush,
		flushTimeout: 10 * time.Second,
		pending:      map[K]*pending[V]{},
		kick:         make(chan struct{}, 1),
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
	go q.run()
	return q
}

// Enqueue records value as the latest edit for key.
func (q *Queue[K, V]) Enqueue(key K, value V) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if p, ok := q.pending[key]; ok {
		p.value = value
		q.mu.Unlock()
		return nil
	}
	q.pending[key] = &pending[V]{value: value, due: time.Now().Add(q.delay)}
	q.mu.Unlock()

	select {
	case q.kick <- struct{}{}:
	default:
	}
	return nil
}

// Pending returns the unflushed value for key, if any.
func (q *Queue[K, V]) Pending(key K) (V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if p, ok := q.pending[key]; ok {
		return p.value, true
	}
	var zero V
	return zero, false
}

func (q *Queue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close stops accepting edits and flushes everything pending. It waits for
// the flush to finish or ctx to end.
func (q *Queue[K, V]) Close(ctx context.Context) error {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		close(q.stop)
	})
	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[K, V]) run() {
	defer close(q.done)
	for {
		var timerC <-chan time.Time
		var timer *time.Timer
		if wait, ok := q.nextWait(); ok {
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		select {
		case <-q.stop:
			if timer != nil {
				timer.Stop()
			}
			q.flushWhere(func(time.Time) bool { return true })
			return
		case <-q.kick:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
		now := time.Now()
		q.flushWhere(func(due time.Time) bool { return !due.After(now) })
	}
}

func (q *Queue[K, V]) nextWait() (time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var next time.Time
	for _, p := range q.pending {
		if next.IsZero() || p.due.Before(next) {
			next = p.due
		}
	}
	if next.IsZero() {
		return 0, false
	}
	wait := time.Until(next)
	if wait < 0 {
		wait = 0
	}
	return wait, true
}

func (q *Queue[K, V]) flushWhere(ready func(due time.Time) bool) {
	q.mu.Lock()
	batch := make(map[K]V)
	for k, p := range q.pending {
		if ready(p.due) {
			batch[k] = p.value
			delete(q.pending, k)
		}
	}
	q.mu.Unlock()

	for k, v := range batch {
		ctx, cancel := context.WithTimeout(context.Background(), q.flushTimeout)
		err := q.flush(ctx, k, v)
		cancel()
		if err != nil {
			q.log.Warn("autosave flush failed", "key", k, "error", err)
			observability.Current().IncAutosaveFlush("error")
			continue
		}
		observability.Current().IncAutosaveFlush("ok")
	}
}
