package ai

import (
	"sync"
	"time"
)

// RateLimiter enforces the per-caller daily quota. Like ResponseCache it is
// advisory, cost control only: implementations may reset at any time and
// carry no cross-instance coordination.
type RateLimiter interface {
	Allow(caller string) bool
}

// DailyLimiter counts calls per caller per UTC day in process memory.
type DailyLimiter struct {
	mu     sync.Mutex
	day    string
	counts map[string]int
	limit  int
	now    func() time.Time
}

// NewDailyLimiter creates a DailyLimiter allowing limit calls per day
func NewDailyLimiter(limit int) *DailyLimiter {
	return &DailyLimiter{
		counts: make(map[string]int),
		limit:  limit,
		now:    time.Now,
	}
}

func (l *DailyLimiter) Allow(caller string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	today := l.now().UTC().Format("2006-01-02")
	if today != l.day {
		// New day bucket; yesterday's counts are gone.
		l.day = today
		l.counts = make(map[string]int)
	}

	if l.counts[caller] >= l.limit {
		return false
	}
	l.counts[caller]++
	return true
}
