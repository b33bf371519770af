package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clock is a settable time source for limiters under test.
type clock struct{ t time.Time }

func newClock() *clock {
	return &clock{t: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// allowN sends n reads from client and returns how many got through.
func allowN(l *Limiter, n int, client string) int {
	got := 0
	for i := 0; i < n; i++ {
		if ok, _ := l.Allow(context.Background(), client, "/job-applications/1", "GET"); ok {
			got++
		}
	}
	return got
}

// frozenLimiter has no sweeper and reads time from c.
func frozenLimiter(t *testing.T, c *clock, cfg Config) *Limiter {
	t.Helper()
	cfg.Enabled = true
	cfg.CleanupInterval = 0
	l := NewLimiter(&cfg)
	l.now = c.now
	t.Cleanup(l.Stop)
	return l
}

func TestBucket_SpendsCapacityThenRefuses(t *testing.T) {
	now := time.Now()
	b := newBucket(3, 1, now)
	for i := 0; i < 3; i++ {
		require.True(t, b.take(now), "token %d", i+1)
	}
	assert.False(t, b.take(now))

	b.take(now.Add(1100 * time.Millisecond))
	assert.False(t, b.take(now.Add(1100*time.Millisecond)), "one second buys one token")
}

func TestBucket_Status(t *testing.T) {
	now := time.Now()
	b := newBucket(10, 1, now)
	for i := 0; i < 5; i++ {
		b.take(now)
	}

	remaining, full, next := b.status(now)
	assert.Equal(t, 5, remaining)
	assert.Equal(t, now.Add(5*time.Second), full)
	assert.Equal(t, now, next)

	for i := 0; i < 5; i++ {
		b.take(now)
	}
	_, _, next = b.status(now)
	assert.Equal(t, now.Add(time.Second), next)
}

func TestBucket_RefillCapsAtCapacity(t *testing.T) {
	now := time.Now()
	b := newBucket(2, 10, now)
	b.take(now)

	remaining, full, _ := b.status(now.Add(time.Hour))
	assert.Equal(t, 2, remaining)
	assert.Equal(t, now.Add(time.Hour), full)
}

func TestLimiter_CountsDownToRefusal(t *testing.T) {
	c := newClock()
	l := frozenLimiter(t, c, Config{DefaultLimit: 4, DefaultWindow: 8 * time.Second})
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		allowed, info := l.Allow(ctx, "10.1.0.7", "/users/1/documents", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 4, info.Limit)
		assert.Equal(t, 3-i, info.Remaining)
	}

	allowed, info := l.Allow(ctx, "10.1.0.7", "/users/1/documents", "GET")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	// Four per eight seconds refills one token every two.
	assert.Equal(t, 2*time.Second, info.RetryAfter)
	assert.Equal(t, c.now().Add(8*time.Second), info.ResetTime)

	c.advance(2 * time.Second)
	allowed, _ = l.Allow(ctx, "10.1.0.7", "/users/1/documents", "GET")
	assert.True(t, allowed)
}

func TestLimiter_RetryAfterIsAtLeastOneSecond(t *testing.T) {
	l := frozenLimiter(t, newClock(), Config{DefaultLimit: 600, DefaultWindow: time.Second})
	require.Equal(t, 600, allowN(l, 600, "10.1.0.8"))

	allowed, info := l.Allow(context.Background(), "10.1.0.8", "/job-applications/1", "GET")
	assert.False(t, allowed)
	assert.Equal(t, time.Second, info.RetryAfter)
}

func TestLimiter_ClientLists(t *testing.T) {
	c := newClock()
	l := frozenLimiter(t, c, Config{
		DefaultLimit:  1,
		DefaultWindow: time.Hour,
		Whitelist:     map[string]bool{"10.9.9.9": true},
		Blacklist:     map[string]bool{"203.0.113.50": true},
	})

	assert.Equal(t, 50, allowN(l, 50, "10.9.9.9"))
	_, info := l.Allow(context.Background(), "10.9.9.9", "/users", "GET")
	assert.Zero(t, info.Limit, "whitelisted clients are not counted")

	assert.Zero(t, allowN(l, 3, "203.0.113.50"))
	assert.Equal(t, 1, allowN(l, 3, "198.51.100.2"))
}

func TestLimiter_Disabled(t *testing.T) {
	l := NewLimiter(&Config{Enabled: false, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer l.Stop()

	assert.Equal(t, 25, allowN(l, 25, "10.1.0.9"))
}

func TestLimiter_EndpointRules(t *testing.T) {
	c := newClock()
	l := frozenLimiter(t, c, Config{
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/auth/login", Method: "POST", Limit: 5, Window: time.Hour, Burst: 3},
		},
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, info := l.Allow(ctx, "10.2.0.1", "/auth/login", "POST")
		require.True(t, allowed, "login %d", i+1)
		assert.Equal(t, 5, info.Limit)
	}
	allowed, _ := l.Allow(ctx, "10.2.0.1", "/auth/login", "POST")
	assert.False(t, allowed, "burst is spent before the hourly limit")

	allowed, info := l.Allow(ctx, "10.2.0.1", "/users", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)

	allowed, info = l.Allow(ctx, "10.2.0.1", "/health", "GET")
	assert.True(t, allowed)
	assert.Zero(t, info.Limit)
}

func TestLimiter_ConcurrentClientsShareOneBucket(t *testing.T) {
	l := frozenLimiter(t, newClock(), Config{DefaultLimit: 40, DefaultWindow: time.Hour})

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow(context.Background(), "10.3.0.1", "/documents/7", "GET"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 40, allowed.Load())
}

func TestLimiter_SweepDropsIdleBuckets(t *testing.T) {
	c := newClock()
	l := frozenLimiter(t, c, Config{DefaultLimit: 10, DefaultWindow: time.Minute})

	for i := 0; i < 4; i++ {
		allowN(l, 1, fmt.Sprintf("10.4.0.%d", i))
	}
	c.advance(2 * time.Hour)
	allowN(l, 1, "10.4.0.0")

	assert.Equal(t, 3, l.sweep(c.now().Add(-idleBucketTTL)))
	assert.Len(t, l.buckets, 1)
	assert.Contains(t, l.buckets, "10.4.0.0:default")
}

func TestLimiter_SweeperStops(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute, CleanupInterval: 10 * time.Millisecond})
	assert.Equal(t, 1, allowN(l, 1, "10.5.0.1"))

	time.Sleep(30 * time.Millisecond)
	l.Stop()
	l.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.buckets, 1, "a fresh bucket is not idle")
}

func TestNewLimiter_NilConfig(t *testing.T) {
	l := NewLimiter(nil)
	defer l.Stop()

	allowed, info := l.Allow(context.Background(), "10.6.0.1", "/enums", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 600, info.Limit)
}

func TestLimiter_PrefixRuleSharedAcrossIDs(t *testing.T) {
	l := frozenLimiter(t, newClock(), Config{
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/documents/", Method: "DELETE", Limit: 2, Window: time.Hour, Burst: 2},
		},
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _ := l.Allow(ctx, "10.0.0.1", fmt.Sprintf("/documents/%d", i), "DELETE")
		require.True(t, allowed, "delete %d", i+1)
	}
	allowed, _ := l.Allow(ctx, "10.0.0.1", "/documents/99", "DELETE")
	assert.False(t, allowed, "the rule counts every document id together")
	allowed, _ = l.Allow(ctx, "10.0.0.2", "/documents/99", "DELETE")
	assert.True(t, allowed, "each client has its own budget")
}

func TestMatchEndpoint(t *testing.T) {
	rules := []EndpointConfig{
		{Path: "/users/", Method: "POST", Limit: 100},
		{Path: "/users", Method: "POST", Limit: 20},
		{Path: "/users/admin/", Method: "POST", Limit: 5},
	}

	tests := []struct {
		path   string
		method string
		want   int
		match  bool
	}{
		{"/users", "POST", 20, true},
		{"/users/42/documents", "POST", 100, true},
		{"/users/admin/reset", "POST", 5, true},
		{"/users/42", "GET", 0, false},
		{"/health", "GET", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, rules)
			require.Equal(t, tt.match, got != nil)
			if got != nil {
				assert.Equal(t, tt.want, got.Limit)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	env := map[string]string{
		"RATE_LIMIT_DEFAULT_LIMIT":    "50",
		"RATE_LIMIT_DEFAULT_WINDOW":   "30s",
		"RATE_LIMIT_WHITELIST":        "10.0.0.1, 10.0.0.2",
		"RATE_LIMIT_BLACKLIST":        "10.0.0.9",
		"RATE_LIMIT_CLEANUP_INTERVAL": "bogus",
	}
	cfg := LoadConfig(func(k string) (string, bool) { v, ok := env[k]; return v, ok })

	require.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, 5*time.Minute, cfg.CleanupInterval, "unparseable durations keep the default")
	assert.Equal(t, map[string]bool{"10.0.0.1": true, "10.0.0.2": true}, cfg.Whitelist)
	assert.Equal(t, map[string]bool{"10.0.0.9": true}, cfg.Blacklist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	disabled := LoadConfig(func(k string) (string, bool) { return "false", k == "RATE_LIMIT_ENABLED" })
	assert.False(t, disabled.Enabled)
}
