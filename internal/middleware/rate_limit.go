package middleware

import (
	"sync"
	"time"

	"github.com/kataras/iris/v12"
)

// TokenBucket refills refillRate tokens per whole second up to capacity
type TokenBucket struct {
	capacity   int64
	tokens     int64
	refillRate int64
	lastRefill time.Time
	mu         sync.Mutex
}

func NewTokenBucket(capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Allow takes a token if one is available.
func (tb *TokenBucket) Allow() bool {
	return tb.allowAt(time.Now())
}

func (tb *TokenBucket) allowAt(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := int64(elapsed.Seconds()) * tb.refillRate
	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// KeyedLimiter one bucket per key, e.g. per client address
type KeyedLimiter struct {
	capacity   int64
	refillRate int64
	idle       time.Duration

	mu      sync.Mutex
	buckets map[string]*TokenBucket
}

func NewKeyedLimiter(capacity, refillRate int64) *KeyedLimiter {
	return &KeyedLimiter{
		capacity:   capacity,
		refillRate: refillRate,
		idle:       10 * time.Minute,
		buckets:    make(map[string]*TokenBucket),
	}
}

func (l *KeyedLimiter) Allow(key string) bool {
	return l.allowAt(key, time.Now())
}

func (l *KeyedLimiter) allowAt(key string, now time.Time) bool {
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		if len(l.buckets) > 10000 {
			l.evictLocked(now)
		}
		b = NewTokenBucket(l.capacity, l.refillRate)
		b.lastRefill = now
		l.buckets[key] = b
	}
	l.mu.Unlock()
	return b.allowAt(now)
}

// evictLocked drops buckets that have been idle long enough to be full again.
func (l *KeyedLimiter) evictLocked(now time.Time) {
	for k, b := range l.buckets {
		b.mu.Lock()
		stale := now.Sub(b.lastRefill) > l.idle
		b.mu.Unlock()
		if stale {
			delete(l.buckets, k)
		}
	}
}

// RateLimitMiddleware answers 429 once the client's bucket is empty.
func RateLimitMiddleware(limiter *KeyedLimiter) iris.Handler {
	return func(ctx iris.Context) {
		if !limiter.Allow(ctx.RemoteAddr()) {
			ctx.StopWithText(iris.StatusTooManyRequests, "Too many login attempts, please wait a moment and try again.")
			return
		}
		ctx.Next()
	}
}

// LoginRateLimit 5 attempts per client, one more every second
func LoginRateLimit() iris.Handler {
	return RateLimitMiddleware(NewKeyedLimiter(5, 1))
}
