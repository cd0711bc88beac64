package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Info 요청 한도 상세 정보
type Info struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetTime time.Time `json:"reset_time"`
}

// Limiter 키별 요청 한도
type Limiter interface {
	AllowWithInfo(ctx context.Context, key string) (bool, *Info, error)
}

// TokenBucket implements the token bucket algorithm for rate limiting
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64   // Maximum number of tokens
	tokens     float64   // Current number of tokens
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last refill timestamp
}

// NewTokenBucket creates a new token bucket
func NewTokenBucket(capacity int, refillRate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   float64(capacity),
		tokens:     float64(capacity),
		refillRate: refillRate,
		lastRefill: now,
	}
}

// allow consumes one token if available and reports the tokens left
func (tb *TokenBucket) allow(now time.Time) (bool, int) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)

	if tb.tokens >= 1 {
		tb.tokens--
		return true, int(tb.tokens)
	}
	return false, 0
}

func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}

	tb.tokens += elapsed * tb.refillRate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// full reports whether the bucket has refilled completely, i.e. it is unused
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	return tb.tokens >= tb.capacity
}

// RateLimiter in-process 키별 token bucket
type RateLimiter struct {
	mu              sync.RWMutex
	buckets         map[string]*TokenBucket
	limit           int
	window          time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
	stopChan        chan struct{}
	stopOnce        sync.Once
}

// NewRateLimiter window 동안 limit 요청 허용
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 60
	}
	if window <= 0 {
		window = time.Minute
	}

	rl := &RateLimiter{
		buckets:         make(map[string]*TokenBucket),
		limit:           limit,
		window:          window,
		cleanupInterval: 10 * time.Minute,
		now:             time.Now,
		stopChan:        make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow checks if a request from the given key is allowed
func (rl *RateLimiter) Allow(key string) bool {
	allowed, _, _ := rl.AllowWithInfo(context.Background(), key)
	return allowed
}

func (rl *RateLimiter) AllowWithInfo(_ context.Context, key string) (bool, *Info, error) {
	now := rl.now()
	allowed, remaining := rl.getBucket(key, now).allow(now)

	return allowed, &Info{
		Limit:     rl.limit,
		Remaining: remaining,
		ResetTime: now.Add(rl.window),
	}, nil
}

// getBucket gets or creates a token bucket for the given key
func (rl *RateLimiter) getBucket(key string, now time.Time) *TokenBucket {
	rl.mu.RLock()
	bucket, exists := rl.buckets[key]
	rl.mu.RUnlock()

	if exists {
		return bucket
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Double-check after acquiring write lock
	if bucket, exists = rl.buckets[key]; exists {
		return bucket
	}

	bucket = NewTokenBucket(rl.limit, float64(rl.limit)/rl.window.Seconds(), now)
	rl.buckets[key] = bucket
	return bucket
}

// cleanupLoop periodically removes full buckets to prevent memory leaks
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopChan:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, bucket := range rl.buckets {
		if bucket.full(now) {
			delete(rl.buckets, key)
			removed++
		}
	}
	return removed
}

// Reset resets the rate limit for a given key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.buckets, key)
}

// Stop 백그라운드 정리 중지
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopChan) })
}
