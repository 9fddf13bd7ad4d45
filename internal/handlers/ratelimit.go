package handlers

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// IPRateLimiter keeps a token bucket per client IP. The map is reset
// periodically so idle clients do not accumulate forever.
type IPRateLimiter struct {
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	mutex    sync.Mutex
}

func NewIPRateLimiter(limit rate.Limit, burst int, resetEvery time.Duration) *IPRateLimiter {
	rl := &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
	go rl.cleanup(resetEvery)
	return rl
}

func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[ip]
	if !exists {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters[ip] = limiter
	}
	return limiter.Allow()
}

func (rl *IPRateLimiter) cleanup(every time.Duration) {
	for {
		time.Sleep(every)
		rl.mutex.Lock()
		rl.limiters = make(map[string]*rate.Limiter)
		rl.mutex.Unlock()
	}
}
