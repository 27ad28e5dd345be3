package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := newMetrics()
	m.recordEmit()
	m.recordEmit()
	m.recordTimerFired()
	m.recordChannelPolled()
	m.recordIOError()
	m.recordConnection()

	assert.Equal(t, uint64(2), m.EventsEmitted())
	assert.Equal(t, uint64(1), m.TimersFired())
	assert.Equal(t, uint64(1), m.ChannelsPolled())
	assert.Equal(t, uint64(1), m.IOErrorsSeen())
	assert.Equal(t, uint64(1), m.ConnectionsMade())
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.recordEmit()
		m.recordTimerFired()
		m.recordChannelPolled()
		m.recordIOError()
		m.recordConnection()
	})
}
