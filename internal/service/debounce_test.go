package service

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncerRunsOnlyLastTask(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var last atomic.Int32
	var runs atomic.Int32
	for i := 1; i <= 5; i++ {
		n := int32(i)
		d.Schedule(func() {
			runs.Add(1)
			last.Store(n)
		})
	}

	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
	assert.Equal(t, int32(5), last.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerCancelAndFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	assert.True(t, d.Pending())
	assert.True(t, d.Cancel())
	assert.False(t, d.Flush())
	assert.Zero(t, runs.Load())

	d.Schedule(func() { runs.Add(1) })
	assert.True(t, d.Flush())
	assert.Equal(t, int32(1), runs.Load())
	assert.False(t, d.Pending())
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var runs atomic.Int32
	d.Schedule(func() { runs.Add(1) })
	d.Stop()
	d.Schedule(func() { runs.Add(1) })

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, runs.Load())
	assert.False(t, d.Pending())
}
