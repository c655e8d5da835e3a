package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchEndpoint(t *testing.T) {
	configs := OptimizeEndpoints(10)

	ep := MatchEndpoint("/api/optimize", "POST", configs)
	require.NotNil(t, ep)
	assert.Equal(t, "/api/optimize", ep.Path)

	ep = MatchEndpoint("/api/optimize/stream", "POST", configs)
	require.NotNil(t, ep)
	assert.Equal(t, "/api/optimize/", ep.Path)

	assert.Nil(t, MatchEndpoint("/api/optimize", "GET", configs))
	assert.Nil(t, MatchEndpoint("/runs/abc", "GET", configs))

	health := MatchEndpoint("/health", "GET", configs)
	require.NotNil(t, health)
	assert.Zero(t, health.Limit)
}

func TestLimiter_OptimizeBurst(t *testing.T) {
	l := NewLimiter(NewConfig(10))
	defer l.Stop()
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	for i := 0; i < 2; i++ {
		ok, info := l.Allow("10.0.0.1", "/api/optimize", "POST")
		require.True(t, ok, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
	}

	ok, info := l.Allow("10.0.0.1", "/api/optimize", "POST")
	assert.False(t, ok)
	assert.Greater(t, info.RetryAfter, time.Duration(0))

	ok, _ = l.Allow("10.0.0.2", "/api/optimize", "POST")
	assert.True(t, ok, "other clients have their own bucket")

	ok, _ = l.Allow("10.0.0.1", "/health", "GET")
	assert.True(t, ok)
}

func TestLimiter_OptimizeEndpointsShareBucket(t *testing.T) {
	l := NewLimiter(NewConfig(5))
	defer l.Stop()
	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }

	allowed := 0
	for i := 0; i < 5; i++ {
		for _, path := range []string{"/api/optimize", "/api/optimize/upload", "/api/optimize/stream"} {
			if ok, _ := l.Allow("10.0.0.1", path, "POST"); ok {
				allowed++
			}
		}
	}
	assert.Equal(t, 1, allowed)
}

func TestLimiter_Refills(t *testing.T) {
	l := NewLimiter(NewConfig(60))
	defer l.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for {
		if ok, _ := l.Allow("c", "/api/optimize", "POST"); !ok {
			break
		}
	}
	now = now.Add(61 * time.Second)
	ok, _ := l.Allow("c", "/api/optimize", "POST")
	assert.True(t, ok)
}

func TestLimiter_DisabledAndWhitelist(t *testing.T) {
	off := NewLimiter(NewConfig(0))
	defer off.Stop()
	for i := 0; i < 50; i++ {
		ok, _ := off.Allow("c", "/api/optimize", "POST")
		require.True(t, ok)
	}

	l := NewLimiter(NewConfig(1, "127.0.0.1"))
	defer l.Stop()
	for i := 0; i < 5; i++ {
		ok, _ := l.Allow("127.0.0.1", "/api/optimize", "POST")
		require.True(t, ok)
	}
}

func TestLimiter_EvictIdle(t *testing.T) {
	l := NewLimiter(&Config{Enabled: true, DefaultLimit: 5, DefaultWindow: time.Minute})
	defer l.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a", "/runs/1", "GET")
	l.Allow("b", "/runs/2", "GET")
	now = now.Add(10 * time.Minute)
	l.Allow("a", "/runs/1", "GET")

	assert.Equal(t, 1, l.evictIdle(5*time.Minute))
	assert.Len(t, l.buckets, 1)
}
