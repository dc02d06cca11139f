// Package ratelimiter keeps one token bucket per client key.
package ratelimiter

import (
	"math"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const sweepInterval = 512

// Decision is the outcome of one Take. RetryAfter is zero when Allowed.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter is safe for concurrent use. A nil *Limiter allows everything.
type Limiter struct {
	limit   rate.Limit
	burst   int
	idleTTL time.Duration

	mu      sync.Mutex
	buckets map[string]*bucket
	calls   uint64
}

type bucket struct {
	tokens   *rate.Limiter
	lastSeen time.Time
}

// New returns nil when rps or burst is not positive.
func New(rps float64, burst int, idleTTL time.Duration) *Limiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &Limiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		buckets: make(map[string]*bucket),
	}
}

// Take consumes one token for key at now. A denied Take consumes nothing and
// says how long until a token frees up. Blank keys are never limited.
func (l *Limiter) Take(key string, now time.Time) Decision {
	if l == nil {
		return Decision{Allowed: true}
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return Decision{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.calls++
	if l.calls%sweepInterval == 0 {
		l.sweepLocked(now)
	}

	res := b.tokens.ReserveN(now, 1)
	if !res.OK() {
		return Decision{RetryAfter: time.Duration(math.MaxInt64)}
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return Decision{RetryAfter: wait}
	}
	return Decision{Allowed: true}
}

func (l *Limiter) sweepLocked(now time.Time) {
	cutoff := now.Add(-l.idleTTL)
	for key, b := range l.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
