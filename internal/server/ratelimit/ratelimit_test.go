package ratelimit

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestTokenBucket(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(10, 1.0, clock.Now())

	for i := 0; i < 10; i++ {
		allowed, remaining, _, _ := bucket.take(clock.Now())
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 9-i, remaining)
	}

	allowed, _, full, next := bucket.take(clock.Now())
	assert.False(t, allowed)
	assert.Equal(t, time.Second, next)
	assert.Equal(t, clock.Now().Add(10*time.Second), full)

	clock.Advance(time.Second)
	allowed, _, _, _ = bucket.take(clock.Now())
	assert.True(t, allowed, "one token refilled")
	allowed, _, _, _ = bucket.take(clock.Now())
	assert.False(t, allowed)
}

func TestTokenBucket_RefillCapped(t *testing.T) {
	clock := newFakeClock()
	bucket := newTokenBucket(3, 1.0, clock.Now())

	clock.Advance(time.Hour)
	_, remaining, _, _ := bucket.take(clock.Now())
	assert.Equal(t, 2, remaining)
}

func TestLimiter_Allow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute}, WithClock(clock.Now))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/preview", "GET")
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/preview", "GET")
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.InDelta(t, float64(6*time.Second), float64(info.RetryAfter), float64(time.Millisecond))

	allowed, _ = limiter.Allow("10.0.0.2", "/preview", "GET")
	assert.True(t, allowed, "clients have separate buckets")
}

func TestLimiter_WhitelistAndBlacklist(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 50; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/preview", "GET")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}

	allowed, _ := limiter.Allow("192.168.1.1", "/health", "GET")
	assert.False(t, allowed)
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: false})
	defer limiter.Stop()

	for i := 0; i < 100; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/intake", "POST")
		require.True(t, allowed)
		assert.Equal(t, 0, info.Limit)
	}
}

func TestLimiter_IntakeIsStrict(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: DefaultEndpointConfigs(10),
	}, WithClock(clock.Now))
	defer limiter.Stop()

	for i := 0; i < 2; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/api/intake", "POST")
		require.True(t, allowed, "burst request %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}
	allowed, info := limiter.Allow("127.0.0.1", "/api/intake", "POST")
	assert.False(t, allowed)
	assert.InDelta(t, float64(6*time.Minute), float64(info.RetryAfter), float64(time.Millisecond))

	allowed, info = limiter.Allow("127.0.0.1", "/api/intake", "GET")
	assert.True(t, allowed, "status polling uses the default limit")
	assert.Equal(t, 1000, info.Limit)

	allowed, info = limiter.Allow("127.0.0.1", "/api/summary", "PUT")
	assert.True(t, allowed)
	assert.Equal(t, 300, info.Limit)
}

func TestLimiter_PrefixRulesShareBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/api/", Method: "DELETE", Limit: 2, Window: time.Minute},
		},
	})
	defer limiter.Stop()

	allowed, _ := limiter.Allow("c", "/api/sections/education/1", "DELETE")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/api/sections/projects/9", "DELETE")
	assert.True(t, allowed)
	allowed, _ = limiter.Allow("c", "/api/skills/hardSkills", "DELETE")
	assert.False(t, allowed)
}

func TestLimiter_HealthUnlimited(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Hour})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, _ := limiter.Allow("c", "/health", "GET")
		require.True(t, allowed)
	}
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := limiter.Allow("127.0.0.1", "/preview", "GET"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, allowedCount)
}

func TestLimiter_Cleanup(t *testing.T) {
	clock := newFakeClock()
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute, IdleTTL: time.Hour}, WithClock(clock.Now))
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/preview", "GET")
	}
	require.Equal(t, 10, limiter.Len())

	clock.Advance(50 * time.Minute)
	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("127.0.0.%d", i+1), "/preview", "GET")
	}

	clock.Advance(20 * time.Minute)
	limiter.Cleanup()
	assert.Equal(t, 5, limiter.Len(), "only recently used buckets survive")
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(nil)
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/preview", "GET")
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := []EndpointConfig{
		{Path: "/api/", Method: "POST", Limit: 300},
		{Path: "/api/intake", Method: "POST", Limit: 10},
		{Path: "/api/sections/", Method: "POST", Limit: 50},
	}

	tests := []struct {
		name   string
		path   string
		method string
		want   int // -1 for no match
	}{
		{"exact beats prefix", "/api/intake", "POST", 10},
		{"longest prefix", "/api/sections/education", "POST", 50},
		{"short prefix", "/api/skills/hardSkills", "POST", 300},
		{"method mismatch", "/api/intake", "GET", -1},
		{"outside prefix", "/preview", "POST", -1},
		{"health", "/health", "GET", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := MatchEndpoint(tt.path, tt.method, configs)
			if tt.want < 0 {
				assert.Nil(t, ec)
				return
			}
			require.NotNil(t, ec)
			assert.Equal(t, tt.want, ec.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("RATE_LIMIT_ENABLED", "")
	t.Setenv("RATE_LIMIT_DEFAULT_LIMIT", "50")
	t.Setenv("RATE_LIMIT_DEFAULT_WINDOW", "")
	t.Setenv("RATE_LIMIT_CLEANUP_INTERVAL", "")
	t.Setenv("RATE_LIMIT_WHITELIST", "127.0.0.1, ::1")
	t.Setenv("RATE_LIMIT_BLACKLIST", "")
	t.Setenv("RATE_LIMIT_INTAKE_PER_HOUR", "3")

	cfg := LoadConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 50, cfg.DefaultLimit)
	assert.Equal(t, time.Minute, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "::1": true}, cfg.Whitelist)
	assert.Empty(t, cfg.Blacklist)

	ec := MatchEndpoint("/api/intake", "POST", cfg.EndpointConfigs)
	require.NotNil(t, ec)
	assert.Equal(t, 3, ec.Limit)

	t.Setenv("RATE_LIMIT_ENABLED", "false")
	assert.False(t, LoadConfig().Enabled)
}
