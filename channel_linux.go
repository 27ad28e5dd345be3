//go:build linux

package reactor

// Rx is the receiving half of a channel created with CreateChannel: it
// registers an eventfd with the Reactor so that values sent from another
// goroutine surface as EventChannelReadable events in the reactor's own
// event stream, instead of requiring a dedicated receiving goroutine.
//
// available tracks how many queued values have already been reported
// through an EventChannelReadable event but not yet consumed by Recv; it
// only ever grows by the number of values newly observed on a readiness
// edge and shrinks by exactly one each time Recv consumes a value, so
// Recv never hands back a value the caller hasn't been notified about.
type Rx[T any] struct {
	state     *sharedState[T]
	reactor   *Reactor
	id        SourceID
	closed    bool
	available int
}

func (rx *Rx[T]) sourceID() *SourceID { return &rx.id }

// CreateChannel creates a channel whose receiver is integrated with r:
// every Send from another goroutine wakes r's NextEvent loop with an
// EventChannelReadable event carrying this Rx's SourceID.
func CreateChannel[T any](r *Reactor) (*Transmitter[T], *Rx[T], error) {
	wake, err := newWakeFd()
	if err != nil {
		return nil, nil, WrapError("channel: eventfd", err)
	}
	s := &sharedState[T]{senders: 1, wake: wake}
	rx := &Rx[T]{state: s, reactor: r}

	if err := r.registerFD(wake.fd, ioRead, &rx.id, rx.onReadable); err != nil {
		_ = wake.close()
		return nil, nil, err
	}
	return &Transmitter[T]{state: s}, rx, nil
}

// onReadable pushes one EventChannelReadable per value newly added to the
// queue since the last readiness edge (not one event per edge, since a
// single wake can coalesce many Sends), followed by one EventIOError
// carrying ErrChannelDisconnected once every Transmitter has closed.
func (rx *Rx[T]) onReadable(events ioEvents) {
	if events&ioRead == 0 {
		return
	}
	rx.state.wake.drain()
	rx.reactor.metrics.recordChannelPolled()

	rx.state.mu.Lock()
	qlen := len(rx.state.queue)
	newMessages := qlen - rx.available
	rx.available += newMessages
	disconnected := rx.state.senders <= 0
	rx.state.mu.Unlock()

	for i := 0; i < newMessages; i++ {
		rx.reactor.emit(Event{Type: EventChannelReadable, Source: &rx.id})
	}
	if disconnected {
		rx.reactor.metrics.recordIOError()
		rx.reactor.emit(Event{Type: EventIOError, Source: &rx.id, Err: ErrChannelDisconnected})
	}
}

// Recv pops one queued value without blocking. ok is false if no value
// has been reported via an EventChannelReadable event yet; err is
// ErrChannelDisconnected once every Transmitter has closed and the queue
// has been drained.
func (rx *Rx[T]) Recv() (v T, ok bool, err error) {
	if rx.available <= 0 {
		rx.state.mu.Lock()
		disconnected := len(rx.state.queue) == 0 && rx.state.senders <= 0
		rx.state.mu.Unlock()
		if disconnected {
			return v, false, ErrChannelDisconnected
		}
		return v, false, nil
	}
	rx.state.mu.Lock()
	v = rx.state.queue[0]
	rx.state.queue = rx.state.queue[1:]
	rx.state.mu.Unlock()
	rx.available--
	return v, true, nil
}

// Close unregisters the receiver from its reactor and releases the
// underlying eventfd.
func (rx *Rx[T]) Close() error {
	if rx.closed {
		return nil
	}
	rx.closed = true
	rx.state.mu.Lock()
	rx.state.receiverClosed = true
	rx.state.mu.Unlock()
	_ = rx.reactor.unregisterFD(rx.state.wake.fd)
	return rx.state.wake.close()
}
