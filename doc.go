// Package reactor provides a single-threaded, Linux-native evented I/O
// reactor. A [Reactor] multiplexes TCP sockets, timerfd-backed [Timer]s,
// and a cross-thread mpsc channel ([CreateChannel]) into one stream of typed [Event]
// values, pulled one at a time by application code via [Reactor.NextEvent].
//
// # Architecture
//
// The reactor is built around an epoll instance: every registered source
// (a [TCPSocket], a [TCPServerSocket], a [Timer], or a channel [Rx])
// claims one file descriptor slot in a direct-indexed callback arena, so
// dispatching a readiness edge never needs a map lookup. Readiness edges
// are translated into typed events and appended to an in-memory ready
// queue; [Reactor.NextEvent] drains that queue before blocking in
// epoll_wait again.
//
// # Platform Support
//
// This package is Linux-only: it depends directly on epoll, timerfd, and
// eventfd, none of which have the file descriptor semantics elsewhere.
// Supporting other platforms would mean an entirely different readiness
// backend (kqueue, IOCP) with different edge cases, which is out of
// scope here.
//
// # Thread Safety
//
// [Reactor.NextEvent] and every method on a registered source must only
// be called from the single goroutine driving the reactor's event loop.
// The one exception is [Transmitter], the sending half of a channel:
// it is safe to call from any goroutine, and is how other goroutines get
// data into the reactor's event stream.
//
// # Usage
//
//	r, err := reactor.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	sock, _ := reactor.NewTCPSocket(r)
//	_ = sock.Connect(addr)
//
//	for {
//	    ev, err := r.NextEvent(context.Background())
//	    if err != nil {
//	        break
//	    }
//	    switch ev.Type {
//	    case reactor.EventConnectComplete:
//	        // ...
//	    }
//	}
//
// # Errors
//
// Socket read, write, accept and connect failures and socket IoError
// events carry an [*IOError], whose
// [IOErrorKind] mirrors the POSIX errno taxonomy (EndOfFile,
// ConnectionReset, BrokenPipe, and so on) rather than Go's os.* sentinel
// errors, since the reactor classifies raw errno values itself instead of
// going through the os package's file-based error wrapping. A
// reactor-integrated channel reports disconnection as an EventIOError
// carrying [ErrChannelDisconnected] instead.
package reactor
