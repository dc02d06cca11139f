package ratelimiter

import "time"

func (l *Limiter) Allow(key string, now time.Time) bool {
	return l.Take(key, now).Allowed
}

func (l *Limiter) Tracked() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
