package reactor

// EventType identifies the kind of payload carried by an Event.
type EventType int

const (
	// EventDataAvailable reports that a TCP socket has at least one byte
	// ready to be read without blocking. The payload is the byte count
	// observed via FIONREAD at dispatch time, not a guarantee that a
	// subsequent read will return exactly that many bytes.
	EventDataAvailable EventType = iota
	// EventConnectComplete reports that an asynchronous TCPSocket.Connect
	// has finished, successfully or not.
	EventConnectComplete
	// EventClientConnected reports that a TCPServerSocket has at least one
	// pending inbound connection ready to be accepted. Exactly one event
	// is emitted per readiness edge, regardless of how many connections
	// are actually queued; callers should Accept in a loop until
	// ErrResourceUnavailable.
	EventClientConnected
	// EventTimerFired reports a single Timer expiration. A periodic timer
	// that missed ticks (e.g. because NextEvent wasn't polled in time)
	// produces one EventTimerFired per missed tick, not a single event
	// with a count.
	EventTimerFired
	// EventChannelReadable reports that a reactor-integrated channel
	// receiver has one newly queued value available to Recv. One event
	// is emitted per value, not per readiness edge.
	EventChannelReadable
	// EventStreamClosed reports that a connected TCPSocket's peer has
	// closed its write side (an orderly EOF) or the connection hung up
	// (EPOLLHUP). The socket is closed before this event is emitted.
	EventStreamClosed
	// EventIOError reports an error observed on a readiness edge (e.g.
	// EPOLLERR) that is not otherwise surfaced through a failed
	// per-operation call.
	EventIOError
)

// String returns a human-readable label for the event type.
func (t EventType) String() string {
	switch t {
	case EventDataAvailable:
		return "DataAvailable"
	case EventConnectComplete:
		return "ConnectComplete"
	case EventClientConnected:
		return "ClientConnected"
	case EventTimerFired:
		return "TimerFired"
	case EventChannelReadable:
		return "ChannelReadable"
	case EventStreamClosed:
		return "StreamClosed"
	case EventIOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Event is a single item pulled from the Reactor's event stream by
// NextEvent. SourceID identifies which registered source produced it,
// letting callers dispatch without having to hold a separate mapping from
// file descriptor to handler.
type Event struct {
	Type EventType

	// Source is the SourceID of the EventSource that produced this event.
	Source *SourceID

	// DataAvailable is populated when Type == EventDataAvailable: the
	// number of bytes currently available to read.
	DataAvailable int

	// ConnectErr is populated when Type == EventConnectComplete: nil on
	// success, an *IOError describing the failure otherwise.
	ConnectErr error

	// Err is populated when Type == EventIOError.
	Err error
}

// SourceID is an opaque, reference-identity token returned when a source
// is registered with the Reactor. Equality is pointer identity, not value
// equality: two SourceIDs describe the same source if and only if they are
// the same pointer. Holding a *SourceID does not keep the source itself
// alive; it is just a comparable handle.
type SourceID struct {
	_ [0]byte
}

// EventSource is implemented by everything the Reactor can deliver events
// for: TCPSocket, TCPServerSocket, Timer, and the reactor-integrated
// channel receiver Rx.
type EventSource interface {
	// sourceID returns the token identifying this source to the Reactor.
	sourceID() *SourceID
}

// OriginatesFrom reports whether ev was produced by source.
func OriginatesFrom(ev Event, source EventSource) bool {
	return ev.Source == source.sourceID()
}
