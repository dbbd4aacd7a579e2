package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/creatorcoach-backend/internal/platform/envutil"
	"github.com/yungbote/creatorcoach-backend/internal/platform/logger"
)

// Claims hands out short-lived exclusive keys so overlapping workers do not
// repeat the same side effect.
type Claims interface {
	// Claim reports true when the caller now owns key.
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Close() error
}

type redisClaims struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
}

// NewClaimsFromEnv connects to REDIS_ADDR. Without REDIS_ADDR it falls back to
// process-local claims.
func NewClaimsFromEnv(log *logger.Logger) (Claims, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := envutil.String("REDIS_ADDR", "")
	if addr == "" {
		log.Warn("REDIS_ADDR not set; send claims are process-local")
		return NewMemoryClaims(), nil
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    envutil.String("REDIS_PASSWORD", ""),
		DB:          envutil.Int("REDIS_DB", 0),
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewClaims(log, rdb, envutil.String("REDIS_KEY_PREFIX", "creatorcoach:")), nil
}

func NewClaims(log *logger.Logger, rdb *goredis.Client, prefix string) Claims {
	return &redisClaims{log: log.With("service", "RedisClaims"), rdb: rdb, prefix: prefix}
}

func (c *redisClaims) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, fmt.Errorf("redis claims not initialized")
	}
	ok, err := c.rdb.SetNX(ctx, c.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (c *redisClaims) Release(ctx context.Context, key string) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis claims not initialized")
	}
	return c.rdb.Del(ctx, c.prefix+key).Err()
}

func (c *redisClaims) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

type memoryClaims struct {
	mu   sync.Mutex
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryClaims() Claims {
	return &memoryClaims{keys: map[string]time.Time{}, now: time.Now}
}

func (m *memoryClaims) Claim(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if exp, ok := m.keys[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.keys[key] = now.Add(ttl)
	return true, nil
}

func (m *memoryClaims) Release(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	return nil
}

func (m *memoryClaims) Close() error { return nil }
