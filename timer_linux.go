//go:build linux

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

// Timer is a timerfd-backed source that emits TimerFired events either
// once or on a fixed interval.
type Timer struct {
	reactor *Reactor
	fd      int
	id      SourceID
	closed  bool
}

// NewTimer creates a Timer registered with r but not yet armed; call
// Start to schedule it.
func NewTimer(r *Reactor) (*Timer, error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return nil, WrapError("timer: timerfd_create", err)
	}
	t := &Timer{reactor: r, fd: fd}
	if err := r.registerFD(fd, ioRead, &t.id, t.onReadable); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return t, nil
}

func (t *Timer) sourceID() *SourceID { return &t.id }

// Start arms the timer. If periodic is false the timer fires once after
// d and then goes inactive; if true it fires every d starting after the
// first d has elapsed.
func (t *Timer) Start(d time.Duration, periodic bool) error {
	if t.closed {
		return ErrClosed
	}
	spec := unix.ItimerSpec{
		Value: unix.NsecToTimespec(d.Nanoseconds()),
	}
	if periodic {
		spec.Interval = unix.NsecToTimespec(d.Nanoseconds())
	}
	if err := unix.TimerfdSettime(t.fd, 0, &spec, nil); err != nil {
		return WrapError("timer: timerfd_settime", err)
	}
	logDebug(t.reactor.logger, "timer", "started", map[string]any{"periodic": periodic, "duration": d.String()})
	return nil
}

// Stop disarms the timer without closing its fd and drops any of its
// TimerFired events still waiting in the ready queue; it can be Start-ed
// again afterward.
func (t *Timer) Stop() error {
	if t.closed {
		return ErrClosed
	}
	var zero unix.ItimerSpec
	if err := unix.TimerfdSettime(t.fd, 0, &zero, nil); err != nil {
		return WrapError("timer: timerfd_settime stop", err)
	}
	t.reactor.cancelSource(&t.id)
	return nil
}

// IsActive reports whether the timer currently has a nonzero remaining
// time or interval armed.
func (t *Timer) IsActive() (bool, error) {
	if t.closed {
		return false, ErrClosed
	}
	var cur unix.ItimerSpec
	if err := unix.TimerfdGettime(t.fd, &cur); err != nil {
		return false, WrapError("timer: timerfd_gettime", err)
	}
	return cur.Value.Sec != 0 || cur.Value.Nsec != 0, nil
}

// Close disarms and releases the timer's underlying timerfd.
func (t *Timer) Close() error {
	if t.closed {
		return nil
	}
	t.closed = true
	_ = t.reactor.unregisterFD(t.fd)
	err := unix.Close(t.fd)
	logDebug(t.reactor.logger, "timer", "closed", nil)
	return err
}

func (t *Timer) onReadable(events ioEvents) {
	if events&ioRead == 0 {
		return
	}
	var buf [8]byte
	n, err := readFD(t.fd, buf[:])
	if err != nil || n != 8 {
		return
	}
	count := uint64(buf[0]) | uint64(buf[1])<<8 | uint64(buf[2])<<16 | uint64(buf[3])<<24 |
		uint64(buf[4])<<32 | uint64(buf[5])<<40 | uint64(buf[6])<<48 | uint64(buf[7])<<56
	// count may be greater than 1 if the timer fired more than once since
	// it was last read (e.g. the reactor was busy processing another
	// event); push one TimerFired event per missed tick rather than
	// coalescing them into a single event carrying the count.
	for i := uint64(0); i < count; i++ {
		t.reactor.metrics.recordTimerFired()
		t.reactor.emit(Event{Type: EventTimerFired, Source: &t.id})
	}
}
