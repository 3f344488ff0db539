package videostats

import (
	"math/rand/v2"
	"sync"
	"time"
)

const (
	defaultMinDelay    = 3 * time.Second
	defaultMaxDelay    = 5 * time.Second
	defaultMaxRequests = 20
)

// RateLimiter paces scraping against a bot-hostile target: a jittered
// minimum spacing between requests plus a hard per-session ceiling.
// Construct one per run and pass it into the batch loop; it is not meant
// to be shared across concurrent batches.
type RateLimiter struct {
	minDelay    time.Duration
	maxDelay    time.Duration
	maxRequests int

	mu           sync.Mutex
	requestCount int
	lastRequest  time.Time

	// sleep is replaceable in tests.
	sleep func(time.Duration)
}

// NewRateLimiter creates a limiter with the default 3-5s spacing and a
// 20-request session ceiling.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWith(defaultMinDelay, defaultMaxDelay, defaultMaxRequests)
}

// NewRateLimiterWith creates a limiter with explicit bounds.
func NewRateLimiterWith(minDelay, maxDelay time.Duration, maxRequests int) *RateLimiter {
	if maxDelay < minDelay {
		maxDelay = minDelay
	}
	return &RateLimiter{
		minDelay:    minDelay,
		maxDelay:    maxDelay,
		maxRequests: maxRequests,
		sleep:       time.Sleep,
	}
}

// CanMakeRequest reports whether the session ceiling still allows another
// request. Enforcement belongs to the caller's loop: Wait itself never
// rejects.
func (rl *RateLimiter) CanMakeRequest() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.requestCount < rl.maxRequests
}

// Remaining returns how many paced requests are left in the session.
func (rl *RateLimiter) Remaining() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return max(0, rl.maxRequests-rl.requestCount)
}

// Wait blocks until a jittered delay in [minDelay, maxDelay] has elapsed
// since the previous paced request, then counts this one. The first call
// of a session never blocks. The lock is released while sleeping so
// CanMakeRequest and Remaining stay responsive during a wait.
func (rl *RateLimiter) Wait() {
	rl.mu.Lock()
	var wait time.Duration
	if !rl.lastRequest.IsZero() {
		delay := jitterBetween(rl.minDelay, rl.maxDelay)
		wait = delay - time.Since(rl.lastRequest)
	}
	rl.mu.Unlock()

	if wait > 0 {
		rl.sleep(wait)
	}

	rl.mu.Lock()
	rl.lastRequest = time.Now()
	rl.requestCount++
	rl.mu.Unlock()
}

// jitterBetween returns a uniformly random duration in [min, max].
func jitterBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + rand.N(max-min)
}

// Reset zeroes the counter and timestamp, opening a fresh session.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.requestCount = 0
	rl.lastRequest = time.Time{}
}
