package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bazaar-shop/marketplace/internal/api/types"
	"github.com/bazaar-shop/marketplace/pkg/logger"
)

// Limiter decides whether another request for key is allowed now.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// RateLimit rejects requests over the limit of their client IP with 429.
// onLimited, when set, is told about each rejection.
func RateLimit(l Limiter, scope string, onLimited func(scope string)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(r.Context(), scope+":"+clientIP(r)) {
				if onLimited != nil {
					onLimited(scope)
				}
				w.Header().Set("Retry-After", "1")
				types.WriteJSON(w, http.StatusTooManyRequests, types.APIResponse{
					Success: false,
					Message: "too many requests, please try again later",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP expects chi's RealIP to have rewritten RemoteAddr already.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type visitor struct {
	limiter *rate.Limiter
	last    time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory.
type MemoryLimiter struct {
	rps   rate.Limit
	burst int

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
	idle      time.Duration
	now       func() time.Time
}

func NewMemoryLimiter(rps float64, burst int) *MemoryLimiter {
	return &MemoryLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: map[string]*visitor{},
		idle:     10 * time.Minute,
		now:      time.Now,
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > m.idle {
		for k, v := range m.visitors {
			if now.Sub(v.last) > m.idle {
				delete(m.visitors, k)
			}
		}
		m.lastSweep = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(m.rps, m.burst)}
		m.visitors[key] = v
	}
	v.last = now
	return v.limiter.AllowN(now, 1)
}

// RedisLimiter is a fixed-window counter shared by every instance through
// Redis. Redis failures let the request through.
type RedisLimiter struct {
	client  *redis.Client
	prefix  string
	limit   int64
	window  time.Duration
	timeout time.Duration
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RedisLimiter{
		client:  client,
		prefix:  "marketplace:ratelimit:",
		limit:   int64(limit),
		window:  window,
		timeout: 250 * time.Millisecond,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	if l.limit <= 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	redisKey := l.prefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		logger.L().Error("rate limiter redis error", zap.String("op", "incr"), zap.Error(err))
		return true
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			logger.L().Error("rate limiter redis error", zap.String("op", "expire"), zap.Error(err))
		}
	}
	return count <= l.limit
}
