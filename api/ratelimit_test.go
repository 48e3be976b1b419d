package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRateLimiter(rps int) (*RateLimiter, *time.Time) {
	now := time.Unix(1_700_000_000, 0)
	rl := NewRateLimiter(rps)
	rl.now = func() time.Time { return now }
	return rl, &now
}

func TestRateLimiter_PerClientBurst(t *testing.T) {
	rl, now := newTestRateLimiter(1)

	require.True(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.1"))
	require.False(t, rl.Allow("10.0.0.1"))
	require.True(t, rl.Allow("10.0.0.2"))

	*now = now.Add(time.Second)
	require.True(t, rl.Allow("10.0.0.1"))
}

func TestRateLimiter_EvictsIdleClients(t *testing.T) {
	rl, now := newTestRateLimiter(1)
	for i := 0; i < 100; i++ {
		require.True(t, rl.Allow(fmt.Sprintf("10.0.0.%d", i)))
	}
	require.Equal(t, 100, rl.Len())

	*now = now.Add(limiterIdleTTL / 2)
	require.True(t, rl.Allow("10.0.0.1"))

	*now = now.Add(limiterIdleTTL/2 + time.Second)
	require.True(t, rl.Allow("10.0.1.1"))
	// Only the client seen in the last TTL and the new one remain.
	require.Equal(t, 2, rl.Len())
}

func TestRateLimiter_Bounded(t *testing.T) {
	rl, _ := newTestRateLimiter(1)
	rl.maxClients = 10
	for i := 0; i < 25; i++ {
		rl.Allow(fmt.Sprintf("client-%d", i))
		require.LessOrEqual(t, rl.Len(), rl.maxClients)
	}
}
