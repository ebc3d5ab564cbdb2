package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ============================================
// MemoryStore - счетчики в памяти процесса
// ============================================

type memoryWindow struct {
	count   int
	resetAt time.Time
}

type MemoryStore struct {
	mu        sync.Mutex
	windows   map[string]*memoryWindow
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (s *MemoryStore) Increment(_ context.Context, key string, window time.Duration) (int, time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{resetAt: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt, nil
}

func (s *MemoryStore) Decrement(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w, ok := s.windows[key]; ok && w.count > 0 {
		w.count--
	}
	return nil
}

// sweep удаляет истекшие окна не чаще раза в минуту
func (s *MemoryStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < time.Minute {
		return
	}
	s.lastSweep = now
	for k, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, k)
		}
	}
}

// ============================================
// RedisStore - общий лимит для нескольких инстансов
// ============================================

var incrementScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

var decrementScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
if current > 0 then
	redis.call("DECR", KEYS[1])
end
return 0
`)

type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, prefix: "ratelimit:"}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	res, err := incrementScript.Run(ctx, s.client, []string{s.prefix + key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis increment: %w", err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("redis increment: unexpected reply %v", res)
	}

	ttl := time.Duration(res[1]) * time.Millisecond
	if ttl < 0 {
		ttl = window
	}
	return int(res[0]), time.Now().Add(ttl), nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	if err := decrementScript.Run(ctx, s.client, []string{s.prefix + key}).Err(); err != nil {
		return fmt.Errorf("redis decrement: %w", err)
	}
	return nil
}
