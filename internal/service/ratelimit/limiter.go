package ratelimit

import (
	"strconv"
	"sync"
	"time"
)

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a token-bucket rate limiter keyed per user. All buckets
// share one refill rate and burst capacity, set at construction.
type Limiter struct {
	mu       sync.Mutex
	m        map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
}

// New creates a limiter allowing ratePerSec sustained requests with the
// given burst capacity per key.
func New(ratePerSec float64, burst int) *Limiter {
	if ratePerSec <= 0 {
		ratePerSec = 50
	}
	if burst <= 0 {
		burst = int(ratePerSec)
	}
	return &Limiter{
		m:        make(map[string]*bucket),
		rate:     ratePerSec,
		capacity: float64(burst),
	}
}

// Allow reports whether one token can be consumed for key.
func (l *Limiter) Allow(key string) bool {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.m[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.m[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * l.rate
		if b.tokens > l.capacity {
			b.tokens = l.capacity
		}
		b.last = now
	}

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// AllowUser is Allow keyed by a numeric user id.
func (l *Limiter) AllowUser(userID int64) bool {
	return l.Allow(strconv.FormatInt(userID, 10))
}

// Size returns the number of tracked keys.
func (l *Limiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.m)
}
