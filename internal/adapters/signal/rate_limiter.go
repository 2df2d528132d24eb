package signal

import (
	"sync"
	"time"

	"github.com/anibaler123143423234321/backend-chat-sub000/internal/domain"
)

// RateLimiter caps inbound events per identity over a sliding window.
type RateLimiter struct {
	mu       sync.Mutex
	history  map[domain.Identity][]time.Time
	limit    int
	interval time.Duration
}

func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 30
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &RateLimiter{
		history:  make(map[domain.Identity][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *RateLimiter) Allow(id domain.Identity) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)

	attempts := rl.history[id]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		rl.history[id] = fresh
		return false
	}

	fresh = append(fresh, now)
	rl.history[id] = fresh
	return true
}

// Forget drops the identity's window so the history map does not grow
// with every identity ever seen. Called on disconnect.
func (rl *RateLimiter) Forget(id domain.Identity) {
	rl.mu.Lock()
	delete(rl.history, id)
	rl.mu.Unlock()
}
