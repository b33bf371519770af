// Package ratelimit limits request rates per client. Limiter keeps token buckets in process
// memory; RedisLimiter counts fixed windows in Redis so several API instances share a budget.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Allower decides whether a request may proceed.
type Allower interface {
	Allow(ctx context.Context, clientID, endpoint, method string) (bool, Info)
	Stop()
}

// Info describes the limit a request was counted against.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// Config selects limits. Whitelisted clients are never counted and blacklisted clients are
// always refused.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// idleBucketTTL is how long an unused bucket survives a sweep.
const idleBucketTTL = time.Hour

// bucket holds up to capacity tokens and regains rate tokens per second.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	filledAt time.Time
	lastSeen time.Time
}

func newBucket(capacity int, rate float64, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     rate,
		tokens:   float64(capacity),
		filledAt: now,
		lastSeen: now,
	}
}

// refill credits the tokens earned since the last call. Callers hold mu.
func (b *bucket) refill(now time.Time) {
	if elapsed := now.Sub(b.filledAt).Seconds(); elapsed > 0 {
		b.tokens = min(b.capacity, b.tokens+elapsed*b.rate)
	}
	b.filledAt = now
}

// take spends one token if there is one.
func (b *bucket) take(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(now)
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// status reports whole tokens left, when the bucket will be full again and when the next
// token arrives. It spends nothing.
func (b *bucket) status(now time.Time) (remaining int, full, next time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(now)

	full, next = now, now
	if b.tokens < b.capacity {
		full = now.Add(b.timeTo(b.capacity))
	}
	if b.tokens < 1 {
		next = now.Add(b.timeTo(1))
	}
	return int(b.tokens), full, next
}

func (b *bucket) timeTo(level float64) time.Duration {
	return time.Duration((level - b.tokens) / b.rate * float64(time.Second))
}

func (b *bucket) idleSince(cutoff time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastSeen.Before(cutoff)
}

// Limiter is the in-process Allower. One bucket exists per client and endpoint rule.
type Limiter struct {
	config *Config
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket

	stop     chan struct{}
	stopOnce sync.Once
}

// NewLimiter starts a limiter. A nil config allows 600 requests a minute per client. Idle
// buckets are swept every CleanupInterval until Stop.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			DefaultLimit:    600,
			DefaultWindow:   time.Minute,
			CleanupInterval: 5 * time.Minute,
		}
	}

	l := &Limiter{
		config:  config,
		now:     time.Now,
		buckets: make(map[string]*bucket),
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.sweepEvery(config.CleanupInterval)
	}
	return l
}

// resolve applies the enable switch and the client lists. It returns the endpoint rule to
// enforce, or a decided outcome when no counting is needed.
func (c *Config) resolve(clientID, endpoint, method string) (*EndpointConfig, *bool) {
	allow, deny := true, false
	if !c.Enabled || c.Whitelist[clientID] {
		return nil, &allow
	}
	if c.Blacklist[clientID] {
		return nil, &deny
	}

	rule := MatchEndpoint(endpoint, method, c.EndpointConfigs)
	if rule == nil {
		rule = &EndpointConfig{Limit: c.DefaultLimit, Window: c.DefaultWindow, Burst: c.DefaultLimit}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return nil, &allow
	}
	return rule, nil
}

// Allow spends a token from the client's bucket for the endpoint rule.
func (l *Limiter) Allow(_ context.Context, clientID, endpoint, method string) (bool, Info) {
	rule, decided := l.config.resolve(clientID, endpoint, method)
	if decided != nil {
		return *decided, Info{Allowed: *decided}
	}

	now := l.now()
	b := l.bucketFor(bucketKey(clientID, method, rule), rule, now)
	allowed := b.take(now)
	remaining, full, next := b.status(now)

	info := Info{Allowed: allowed, Limit: rule.Limit, Remaining: remaining, ResetTime: full}
	if !allowed {
		info.RetryAfter = max(next.Sub(now), time.Second)
	}
	return allowed, info
}

func (l *Limiter) bucketFor(key string, rule *EndpointConfig, now time.Time) *bucket {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.buckets[key]; ok {
		return b
	}
	capacity := rule.Burst
	if capacity <= 0 {
		capacity = rule.Limit
	}
	b := newBucket(capacity, float64(rule.Limit)/rule.Window.Seconds(), now)
	l.buckets[key] = b
	return b
}

func (l *Limiter) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.sweep(l.now().Add(-idleBucketTTL))
		case <-l.stop:
			return
		}
	}
}

// sweep drops buckets not used since cutoff and returns how many went.
func (l *Limiter) sweep(cutoff time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for key, b := range l.buckets {
		if b.idleSince(cutoff) {
			delete(l.buckets, key)
			n++
		}
	}
	return n
}

// Stop ends the sweeper. Calling it again is a no-op.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
