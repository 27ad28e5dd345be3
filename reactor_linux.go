//go:build linux

package reactor

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"
)

// maxFDs bounds the direct-indexed callback arena the same way the fd
// table underneath epoll itself is bounded: file descriptors are small
// dense integers, so a flat array indexed by fd avoids a map lookup on
// every dispatched event.
const maxFDs = 65536

// ioEvents is the readiness bitmask epoll reports for a registered fd.
type ioEvents uint32

const (
	ioRead ioEvents = 1 << iota
	ioWrite
	ioError
	ioHangup
)

// ioCallback translates a raw readiness edge on one fd into zero or more
// Events appended to the reactor's ready queue. It runs on the reactor's
// single owning goroutine, inline during dispatch, so implementations
// must not block.
type ioCallback func(events ioEvents)

// fdSlot is the arena entry for one file descriptor: a registered
// source's dispatch callback plus the SourceID events produced through
// it are tagged with, used by cancelSource to invalidate any events
// already sitting in the ready queue when a source is torn down.
type fdSlot struct {
	callback ioCallback
	source   *SourceID
	active   bool
}

// pendingEvent is one slot in the ready queue. valid is cleared in place
// by cancelSource instead of removing the slot, so cancellation never has
// to shift a slice; NextEvent simply skips invalid slots as it drains.
type pendingEvent struct {
	event Event
	valid bool
}

// Reactor is a single-threaded, epoll-backed event queue. All of its
// exported methods, with the sole exception of the handles returned to
// other goroutines (the channel's Transmitter side), are meant to be
// called from one goroutine — the one that calls NextEvent in a loop.
type Reactor struct {
	epfd int

	fds [maxFDs]fdSlot

	queue []pendingEvent
	head  int
	wake  *wakeFd

	logger  Logger
	metrics *Metrics

	mu     sync.Mutex // guards closed only; everything else is single-goroutine
	closed bool
}

// New creates a Reactor backed by a fresh epoll instance.
func New(opts ...ReactorOption) (*Reactor, error) {
	cfg := resolveReactorOptions(opts)

	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, WrapError("reactor: epoll_create1", err)
	}

	wake, err := newWakeFd()
	if err != nil {
		_ = unix.Close(epfd)
		return nil, WrapError("reactor: eventfd", err)
	}

	r := &Reactor{
		epfd:    epfd,
		wake:    wake,
		logger:  cfg.logger,
		metrics: cfg.metrics,
	}

	if err := r.epollAdd(wake.fd, ioRead, func(ioEvents) {
		r.wake.drain()
	}); err != nil {
		_ = wake.close()
		_ = unix.Close(epfd)
		return nil, err
	}

	logDebug(r.logger, "reactor", "created", nil)
	return r, nil
}

// Metrics returns the reactor's metrics collector, or nil if WithMetrics
// was never set.
func (r *Reactor) Metrics() *Metrics { return r.metrics }

// Close tears down the reactor's epoll descriptor and wake eventfd. It
// does not close sources registered with it; callers must Close each
// source first (or accept that its fd leaks past the reactor's own
// lifetime).
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	_ = r.wake.close()
	err := unix.Close(r.epfd)
	logDebug(r.logger, "reactor", "closed", nil)
	return err
}

func (r *Reactor) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// registerFD adds fd to the epoll set with the given readiness mask and
// dispatch callback, tagging the arena slot with source for later
// cancellation.
func (r *Reactor) registerFD(fd int, events ioEvents, source *SourceID, cb ioCallback) error {
	if r.isClosed() {
		return ErrReactorClosed
	}
	if fd < 0 || fd >= maxFDs {
		return WrapError("reactor: registerFD", ErrClosed)
	}
	r.fds[fd] = fdSlot{callback: cb, source: source, active: true}
	return r.epollAdd(fd, events, cb)
}

func (r *Reactor) epollAdd(fd int, events ioEvents, cb ioCallback) error {
	ev := &unix.EpollEvent{Events: ioEventsToEpoll(events), Fd: int32(fd)}
	err := retryEINTR(func() error { return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, ev) })
	if err != nil {
		r.fds[fd] = fdSlot{}
		return WrapError("reactor: epoll_ctl add", err)
	}
	if events != 0 {
		r.fds[fd].callback = cb
		r.fds[fd].active = true
	}
	return nil
}

// modifyFD updates the readiness mask for an already-registered fd.
func (r *Reactor) modifyFD(fd int, events ioEvents) error {
	if fd < 0 || fd >= maxFDs || !r.fds[fd].active {
		return WrapError("reactor: modifyFD", ErrClosed)
	}
	ev := &unix.EpollEvent{Events: ioEventsToEpoll(events), Fd: int32(fd)}
	if err := retryEINTR(func() error { return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, ev) }); err != nil {
		return WrapError("reactor: epoll_ctl mod", err)
	}
	return nil
}

// unregisterFD removes fd from the epoll set and clears its arena slot.
// It also invalidates any events already queued for the slot's source,
// since once a source tears down its fd its stale readiness should never
// be handed to the application.
func (r *Reactor) unregisterFD(fd int) error {
	if fd < 0 || fd >= maxFDs || !r.fds[fd].active {
		return nil
	}
	source := r.fds[fd].source
	r.fds[fd] = fdSlot{}
	err := retryEINTR(func() error { return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil) })
	if source != nil {
		r.cancelSource(source)
	}
	if err != nil {
		return WrapError("reactor: epoll_ctl del", err)
	}
	return nil
}

// cancelSource marks every event still sitting in the ready queue for
// source as invalid, in place, so NextEvent skips it without having to
// shift the queue.
func (r *Reactor) cancelSource(source *SourceID) {
	for i := range r.queue {
		if r.queue[i].valid && r.queue[i].event.Source == source {
			r.queue[i].valid = false
		}
	}
}

// emit appends an event to the ready queue, to be returned by a future
// NextEvent call. It is called by source dispatch callbacks while
// running inline inside pollOnce.
func (r *Reactor) emit(ev Event) {
	r.queue = append(r.queue, pendingEvent{event: ev, valid: true})
	if r.metrics != nil {
		r.metrics.recordEmit()
	}
}

// NextEvent blocks until an event is available, the reactor is closed, or
// ctx is done, whichever comes first.
func (r *Reactor) NextEvent(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}

	var cancelWatch func()
	if done := ctx.Done(); done != nil {
		stop := make(chan struct{})
		go func() {
			select {
			case <-done:
				_ = r.wake.notify()
			case <-stop:
			}
		}()
		cancelWatch = func() { close(stop) }
		defer cancelWatch()
	}

	for {
		for r.head < len(r.queue) {
			pe := r.queue[r.head]
			r.head++
			if pe.valid {
				r.compactQueue()
				return pe.event, nil
			}
		}
		r.compactQueue()

		if r.isClosed() {
			return Event{}, ErrReactorClosed
		}
		if err := ctx.Err(); err != nil {
			return Event{}, err
		}

		if err := r.pollOnce(); err != nil {
			return Event{}, err
		}
	}
}

// compactQueue drops consumed slots from the front of the queue once
// they've all been read, so a long-lived reactor doesn't grow the slice
// without bound.
func (r *Reactor) compactQueue() {
	if r.head == len(r.queue) {
		r.queue = r.queue[:0]
		r.head = 0
	}
}

// pollOnce blocks in epoll_wait for exactly one readiness edge and
// dispatches it. Polling one event at a time (rather than draining a
// batch per syscall) keeps event ordering a simple FIFO: a source that
// becomes ready twice in one edge-check still only contributes events in
// the order its callback appends them, and a newly-registered source
// from inside a callback can't jump ahead of events already queued from
// this same poll.
func (r *Reactor) pollOnce() error {
	var buf [1]unix.EpollEvent
	n, err := unix.EpollWait(r.epfd, buf[:], -1)
	if err != nil {
		if isRetriable(err) {
			return nil
		}
		return WrapError("reactor: epoll_wait", err)
	}
	if n == 0 {
		return nil
	}

	fd := int(buf[0].Fd)
	if fd < 0 || fd >= maxFDs {
		return nil
	}
	slot := r.fds[fd]
	if !slot.active || slot.callback == nil {
		return nil
	}
	slot.callback(epollToIOEvents(buf[0].Events))
	return nil
}

func ioEventsToEpoll(events ioEvents) uint32 {
	var e uint32
	if events&ioRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&ioWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func epollToIOEvents(e uint32) ioEvents {
	var events ioEvents
	if e&unix.EPOLLIN != 0 {
		events |= ioRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= ioWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= ioError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= ioHangup
	}
	return events
}
