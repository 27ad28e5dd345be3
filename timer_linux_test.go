//go:build linux

package reactor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_OneShot(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	defer r.Close()

	timer, err := NewTimer(r)
	require.NoError(t, err)
	defer timer.Close()

	require.NoError(t, timer.Start(20*time.Millisecond, false))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ev, err := r.NextEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, EventTimerFired, ev.Type)
	assert.True(t, OriginatesFrom(ev, timer))

	active, err := timer.IsActive()
	require.NoError(t, err)
	assert.False(t, active)
}

func TestTimer_Periodic(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	defer r.Close()

	timer, err := NewTimer(r)
	require.NoError(t, err)
	defer timer.Close()

	require.NoError(t, timer.Start(15*time.Millisecond, true))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		ev, err := r.NextEvent(ctx)
		require.NoError(t, err)
		assert.Equal(t, EventTimerFired, ev.Type)
	}

	require.NoError(t, timer.Stop())
}

func TestTimer_MissedTicksProduceOneEventPerTick(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	defer r.Close()

	timer, err := NewTimer(r)
	require.NoError(t, err)
	defer timer.Close()

	require.NoError(t, timer.Start(10*time.Millisecond, true))

	// Let several intervals elapse before ever polling, so the timerfd's
	// expiration counter accumulates more than one missed tick.
	time.Sleep(55 * time.Millisecond)

	// A single poll reads the accumulated expiration count once and must
	// queue one event per elapsed tick, not one event for the whole read.
	require.NoError(t, r.pollOnce())
	assert.GreaterOrEqual(t, len(r.queue)-r.head, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var fired int
	for fired < 3 {
		ev, err := r.NextEvent(ctx)
		require.NoError(t, err)
		require.Equal(t, EventTimerFired, ev.Type)
		fired++
	}
	require.NoError(t, timer.Stop())
}

func TestTimer_StopPreventsFurtherEvents(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	defer r.Close()

	timer, err := NewTimer(r)
	require.NoError(t, err)
	defer timer.Close()

	require.NoError(t, timer.Start(15*time.Millisecond, true))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = r.NextEvent(ctx)
	require.NoError(t, err)

	require.NoError(t, timer.Stop())

	shortCtx, cancel2 := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel2()
	_, err = r.NextEvent(shortCtx)
	assert.Error(t, err)
}
