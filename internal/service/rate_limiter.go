package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter limita la frecuencia de requests por clave con ventana fija.
type RateLimiter interface {
	Allow(key string, window time.Duration, max int) bool
}

type memoryRateLimiter struct {
	mu   sync.Mutex
	hits map[string][]time.Time
}

// NewMemoryRateLimiter crea un rate limiter en memoria.
func NewMemoryRateLimiter() RateLimiter {
	return &memoryRateLimiter{
		hits: make(map[string][]time.Time),
	}
}

func (l *memoryRateLimiter) Allow(key string, window time.Duration, max int) bool {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}

const redisAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisRateLimiter struct {
	client redisEvaler
	prefix string
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRateLimiter crea un rate limiter de ventana fija sobre redis.
func NewRedisRateLimiter(client *redis.Client) RateLimiter {
	if client == nil {
		return nil
	}
	return &redisRateLimiter{
		client: client,
		prefix: "throttle:",
	}
}

func (l *redisRateLimiter) Allow(key string, window time.Duration, max int) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		return false
	}
	if max <= 0 {
		max = 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	seconds := int(window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisAllowScript, []string{l.prefix + normalizedKey}, seconds).Int()
	if err != nil {
		// Si redis falla preferimos degradar a permitir antes que cortar trafico.
		return true
	}
	return count <= max
}
