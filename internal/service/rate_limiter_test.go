package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebhath/ebhath-api/pkg/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiterWindow(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	slots := storage.NewMemoryStorage().Namespace("203.0.113.7")
	limiter := NewSubmissionRateLimiter(slots, 3, time.Hour, nil).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allowed())
		require.NoError(t, limiter.Record())
		clock.Advance(time.Minute)
	}
	assert.False(t, limiter.Allowed())
	assert.Equal(t, 3, limiter.Count())

	clock.Advance(57*time.Minute - time.Millisecond)
	assert.False(t, limiter.Allowed())

	clock.Advance(time.Millisecond)
	assert.True(t, limiter.Allowed())
	assert.Equal(t, 2, limiter.Count())

	clock.Advance(2 * time.Hour)
	assert.True(t, limiter.Allowed())
	assert.Zero(t, limiter.Count())
}

func TestRateLimiterPersistsMilliseconds(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1700000000123)}
	slots := storage.NewMemoryStorage().Namespace("client")
	limiter := NewSubmissionRateLimiter(slots, 0, 0, nil).WithClock(clock.Now)

	require.NoError(t, limiter.Record())

	raw, found, err := slots.Get(RateLimitSlot)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "[1700000000123]", raw)
}

func TestRateLimiterIgnoresCorruptLedger(t *testing.T) {
	slots := storage.NewMemoryStorage().Namespace("client")
	require.NoError(t, slots.Set(RateLimitSlot, "{broken"))

	limiter := NewSubmissionRateLimiter(slots, 3, time.Hour, nil)
	assert.True(t, limiter.Allowed())
	require.NoError(t, limiter.Record())
	assert.Equal(t, 1, limiter.Count())
}
