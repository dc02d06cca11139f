package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var epoch = time.Unix(1_700_000_000, 0)

func TestTakeEnforcesBurstPerKey(t *testing.T) {
	l := New(1, 2, time.Minute)

	require.True(t, l.Allow("ip:1", epoch))
	require.True(t, l.Allow("ip:1", epoch))

	denied := l.Take("ip:1", epoch)
	require.False(t, denied.Allowed)
	require.InDelta(t, time.Second, denied.RetryAfter, float64(time.Millisecond))

	require.True(t, l.Allow("ip:2", epoch), "keys have independent buckets")
	require.True(t, l.Allow("ip:1", epoch.Add(time.Second)), "bucket refills")
}

func TestDeniedTakeDoesNotConsume(t *testing.T) {
	l := New(1, 1, time.Minute)
	require.True(t, l.Allow("k", epoch))
	for i := 0; i < 5; i++ {
		require.False(t, l.Allow("k", epoch.Add(100*time.Millisecond)))
	}
	require.True(t, l.Allow("k", epoch.Add(time.Second)))
}

func TestNilLimiterAndBlankKeyAllow(t *testing.T) {
	var l *Limiter
	require.True(t, l.Take("ip:1", epoch).Allowed)
	require.Nil(t, New(0, 1, 0))
	require.Nil(t, New(1, 0, 0))

	live := New(1, 1, 0)
	for i := 0; i < 5; i++ {
		require.True(t, live.Allow("  ", epoch))
	}
	require.Zero(t, live.Tracked())
}

func TestSweepDropsIdleKeys(t *testing.T) {
	l := New(1000, 1000, time.Second)
	l.Allow("stale", epoch)
	later := epoch.Add(time.Minute)
	for i := 0; i < sweepInterval; i++ {
		l.Allow("fresh", later)
	}
	require.Equal(t, 1, l.Tracked())
}
