package sms

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket bounding how many messages leave the dispatcher.
type RateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	mutex      sync.Mutex
	now        func() time.Time
}

// NewRateLimiter allows perMinute sends per minute with bursts up to the same amount.
// A non-positive perMinute returns nil, which allows everything.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &RateLimiter{
		tokens:     perMinute,
		maxTokens:  perMinute,
		refillRate: time.Minute / time.Duration(perMinute),
		lastRefill: time.Now(),
		now:        time.Now,
	}
}

// Allow takes one token if available.
func (rl *RateLimiter) Allow() bool {
	if rl == nil {
		return true
	}
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refill()
	if rl.tokens == 0 {
		return false
	}
	rl.tokens--
	return true
}

// Status returns the available and maximum tokens.
func (rl *RateLimiter) Status() (int, int) {
	if rl == nil {
		return 0, 0
	}
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	rl.refill()
	return rl.tokens, rl.maxTokens
}

// refill must be called with the mutex held.
func (rl *RateLimiter) refill() {
	now := rl.now()
	if add := int(now.Sub(rl.lastRefill) / rl.refillRate); add > 0 {
		rl.tokens = min(rl.tokens+add, rl.maxTokens)
		rl.lastRefill = rl.lastRefill.Add(time.Duration(add) * rl.refillRate)
	}
}
