package api

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	rateKeyPrefix   = "rl:reservations"
	maxLocalClients = 10000
)

// tokenBucketScript refills `refill_tokens` every `interval_ms` up to
// `capacity` and takes one token. Returns {allowed, remaining, retry_ms}.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		local until_next = interval_ms - (now_ms - last_refill)
		if until_next < 0 then until_next = 0 end
		retry_after_ms = until_next
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// RateLimiter is a per-client token bucket. With a Redis client the bucket
// is shared by every server instance; without one, or when Redis errors,
// each process keeps its own buckets.
type RateLimiter struct {
	Capacity       int
	RefillInterval time.Duration

	rdb *redis.Client
	log logrus.FieldLogger
	now func() time.Time

	mu    sync.Mutex
	local map[string]*localBucket
}

type localBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(capacity int, refill time.Duration, rdb *redis.Client, log logrus.FieldLogger) *RateLimiter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RateLimiter{
		Capacity:       capacity,
		RefillInterval: refill,
		rdb:            rdb,
		log:            log,
		now:            time.Now,
		local:          make(map[string]*localBucket),
	}
}

// Middleware rejects requests over the limit with 429 and sets the
// X-RateLimit-* headers on every response.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rateKeyPrefix + ":ip:" + clientIP(r)
		allowed, remaining, retry := rl.take(r.Context(), key)

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.Capacity))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !allowed {
			secs := int(math.Ceil(retry.Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":       "too_many_requests",
				"message":     "rate limit exceeded",
				"retry_after": secs,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) take(ctx context.Context, key string) (bool, int64, time.Duration) {
	if rl.rdb != nil {
		allowed, remaining, retry, err := rl.takeRedis(ctx, key)
		if err == nil {
			return allowed, remaining, retry
		}
		rl.log.WithError(err).WithField("key", key).Warn("rate limit: redis unavailable, using local bucket")
	}
	return rl.takeLocal(key)
}

func (rl *RateLimiter) takeRedis(ctx context.Context, key string) (bool, int64, time.Duration, error) {
	fullRefill := rl.RefillInterval * time.Duration(rl.Capacity)
	ttl := max(int64(fullRefill/time.Second)*2, 60)

	vals, err := tokenBucketScript.Run(ctx, rl.rdb, []string{key},
		rl.now().UnixMilli(),
		rl.Capacity,
		1,
		rl.RefillInterval.Milliseconds(),
		ttl,
	).Result()
	if err != nil {
		return false, 0, 0, err
	}
	arr, ok := vals.([]any)
	if !ok || len(arr) != 3 {
		return false, 0, 0, fmt.Errorf("unexpected script result %#v", vals)
	}
	allowed := asInt64(arr[0]) == 1
	return allowed, asInt64(arr[1]), time.Duration(asInt64(arr[2])) * time.Millisecond, nil
}

func (rl *RateLimiter) takeLocal(key string) (bool, int64, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.local[key]
	if !ok {
		if len(rl.local) >= maxLocalClients {
			rl.evictIdle(now)
		}
		b = &localBucket{limiter: rate.NewLimiter(rate.Every(rl.RefillInterval), rl.Capacity)}
		rl.local[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, 0, rl.RefillInterval
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, 0, delay
	}
	return true, int64(b.limiter.TokensAt(now)), 0
}

// evictIdle drops buckets that have been full long enough to be
// indistinguishable from new ones.
func (rl *RateLimiter) evictIdle(now time.Time) {
	idle := rl.RefillInterval * time.Duration(rl.Capacity)
	for k, b := range rl.local {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.local, k)
		}
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host == "" {
		return "unknown"
	}
	return host
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
