package reactor

import "sync/atomic"

// Metrics holds simple running counters for a Reactor, enabled via
// WithMetrics. All fields are safe for concurrent reads while the
// reactor is running.
type Metrics struct {
	eventsEmitted   atomic.Uint64
	timersFired     atomic.Uint64
	channelsPolled  atomic.Uint64
	ioErrorsSeen    atomic.Uint64
	connectionsMade atomic.Uint64
}

func newMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) recordEmit() {
	if m == nil {
		return
	}
	m.eventsEmitted.Add(1)
}

func (m *Metrics) recordTimerFired() {
	if m == nil {
		return
	}
	m.timersFired.Add(1)
}

func (m *Metrics) recordChannelPolled() {
	if m == nil {
		return
	}
	m.channelsPolled.Add(1)
}

func (m *Metrics) recordIOError() {
	if m == nil {
		return
	}
	m.ioErrorsSeen.Add(1)
}

func (m *Metrics) recordConnection() {
	if m == nil {
		return
	}
	m.connectionsMade.Add(1)
}

// EventsEmitted returns the total number of events appended to the ready
// queue over the reactor's lifetime.
func (m *Metrics) EventsEmitted() uint64 { return m.eventsEmitted.Load() }

// TimersFired returns the total number of TimerFired events emitted.
func (m *Metrics) TimersFired() uint64 { return m.timersFired.Load() }

// ChannelsPolled returns the total number of times a channel receiver's
// eventfd was woken and checked for queued values, across all channels
// created against this reactor.
func (m *Metrics) ChannelsPolled() uint64 { return m.channelsPolled.Load() }

// IOErrorsSeen returns the total number of IOError events emitted.
func (m *Metrics) IOErrorsSeen() uint64 { return m.ioErrorsSeen.Load() }

// ConnectionsMade returns the total number of successfully completed
// TCP connections (client connects and server accepts combined).
func (m *Metrics) ConnectionsMade() uint64 { return m.connectionsMade.Load() }
