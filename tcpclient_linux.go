//go:build linux

package reactor

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

// connState is the TCP connection lifecycle: Created is a freshly opened,
// unconnected socket; Connecting is between Connect and the completion
// event; Connected accepts reads and writes; Closed is terminal.
type connState int

const (
	connCreated connState = iota
	connConnecting
	connConnected
	connClosed
)

// TCPSocket is a TCP client connection integrated with a Reactor. Connect
// is asynchronous: once the attempt has been started, its completion
// (success or failure) is reported as an EventConnectComplete event; only
// errors raised while starting the attempt are returned by Connect itself.
// A failed connection is closed before its event is emitted. Once connected, the
// socket is switched to blocking mode: Read only performs the underlying
// blocking read syscall when available tracks unread bytes already
// reported by a prior DataAvailable event, so it never blocks the
// reactor's single goroutine waiting for bytes that haven't arrived yet.
type TCPSocket struct {
	reactor   *Reactor
	fd        int
	id        SourceID
	state     connState
	available int
}

// NewTCPSocket returns an unconnected TCPSocket handle bound to r. The
// underlying socket fd is created lazily by Connect, once the target
// address family (IPv4 vs IPv6) is known.
func NewTCPSocket(r *Reactor) (*TCPSocket, error) {
	return &TCPSocket{reactor: r, fd: -1, state: connCreated}, nil
}

func (s *TCPSocket) sourceID() *SourceID { return &s.id }

// Connect creates the underlying non-blocking socket for addr's address
// family and begins an asynchronous connect. Completion is reported
// through the reactor's event stream as EventConnectComplete.
func (s *TCPSocket) Connect(addr netip.AddrPort) error {
	if s.state != connCreated {
		return ErrClosed
	}
	domain := unix.AF_INET
	if addr.Addr().Is6() && !addr.Addr().Is4In4() {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return WrapError("tcp: socket", err)
	}
	s.fd = fd

	sa := addrPortToSockaddr(addr)
	err = retryEINTR(func() error { return unix.Connect(s.fd, sa) })
	if err != nil && err != unix.EINPROGRESS {
		_ = unix.Close(s.fd)
		s.fd = -1
		return lastError(err)
	}

	s.state = connConnecting
	if regErr := s.reactor.registerFD(s.fd, ioWrite, &s.id, s.onEpollEvent); regErr != nil {
		return regErr
	}
	if err == nil {
		// Connected synchronously (rare, e.g. loopback); still report
		// completion through the event stream rather than the call
		// stack, so callers only ever learn of completion one way.
		s.finishConnect(nil)
	}
	return nil
}

func (s *TCPSocket) onEpollEvent(events ioEvents) {
	switch s.state {
	case connConnecting:
		s.processConnecting(events)
	case connConnected:
		s.processConnected(events)
	}
}

func (s *TCPSocket) processConnecting(events ioEvents) {
	if events&(ioWrite|ioError|ioHangup) == 0 {
		return
	}
	errno, err := unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		s.finishConnect(lastError(err))
		return
	}
	if errno != 0 {
		s.finishConnect(translateErrno(unix.Errno(errno), true))
		return
	}
	s.finishConnect(nil)
}

func (s *TCPSocket) finishConnect(err error) {
	s.state = connConnected
	if err == nil {
		if nbErr := unix.SetNonblock(s.fd, false); nbErr != nil {
			err = lastError(nbErr)
		}
	}
	if err != nil {
		_ = s.Close()
		s.reactor.emit(Event{Type: EventConnectComplete, Source: &s.id, ConnectErr: err})
		return
	}
	_ = s.reactor.modifyFD(s.fd, ioRead)
	s.reactor.metrics.recordConnection()
	s.reactor.emit(Event{Type: EventConnectComplete, Source: &s.id, ConnectErr: err})
}

// processConnected handles readiness edges once the socket is connected.
// EPOLLERR takes priority over everything else and is surfaced by
// attempting a zero-length read to recover the underlying errno, rather
// than calling getsockopt(SO_ERROR) uniformly for every error path; the
// socket is closed before the error event is appended. Otherwise, a
// readable edge reports the currently available byte count via FIONREAD
// (or treats it as zero outright on EPOLLHUP, without bothering to ask
// the kernel): zero means the peer has closed its write side (orderly
// EOF), surfaced as EventStreamClosed after the socket is closed; a
// positive count updates available and is surfaced as EventDataAvailable.
func (s *TCPSocket) processConnected(events ioEvents) {
	if events&ioError != 0 {
		var err error
		_ = retryEINTR(func() error {
			_, err = unix.Read(s.fd, nil)
			return err
		})
		if err == nil {
			return
		}
		s.reactor.metrics.recordIOError()
		_ = s.Close()
		s.reactor.emit(Event{Type: EventIOError, Source: &s.id, Err: lastError(err)})
		return
	}
	if events&ioRead == 0 {
		return
	}

	var n int
	if events&ioHangup != 0 {
		n = 0
	} else {
		var err error
		n, err = fionread(s.fd)
		if err != nil {
			s.reactor.metrics.recordIOError()
			s.reactor.emit(Event{Type: EventIOError, Source: &s.id, Err: lastError(err)})
			return
		}
	}
	if n > 0 {
		s.available = n
		s.reactor.emit(Event{Type: EventDataAvailable, Source: &s.id, DataAvailable: n})
		return
	}
	s.closeOnStreamEnd()
}

// closeOnStreamEnd closes the socket and then emits EventStreamClosed.
// Closing first (rather than after) matters: unregistering the fd
// invalidates any stale events already sitting in the ready queue for
// this source, and the terminal event must be appended afterward so it
// isn't swept up by that same invalidation.
func (s *TCPSocket) closeOnStreamEnd() {
	_ = s.Close()
	s.reactor.emit(Event{Type: EventStreamClosed, Source: &s.id})
}

// Read performs a blocking read gated by available: it only reads up to
// the number of bytes already reported by the most recent DataAvailable
// event, so it cannot block the reactor's goroutine waiting on bytes that
// haven't arrived. Call it only after a DataAvailable event.
func (s *TCPSocket) Read(buf []byte) (int, error) {
	if s.state != connConnected {
		return 0, ErrClosed
	}
	if s.available <= 0 {
		return 0, nil
	}
	if len(buf) > s.available {
		buf = buf[:s.available]
	}
	var n int
	err := retryEINTR(func() error {
		var e error
		n, e = unix.Read(s.fd, buf)
		return e
	})
	if err != nil {
		if isWouldBlock(err) {
			return 0, nil
		}
		return 0, lastError(err)
	}
	s.available -= n
	return n, nil
}

// Write performs a single write, retrying on EINTR.
func (s *TCPSocket) Write(buf []byte) (int, error) {
	if s.state != connConnected {
		return 0, ErrClosed
	}
	var n int
	err := retryEINTR(func() error {
		var e error
		n, e = unix.Write(s.fd, buf)
		return e
	})
	if err != nil {
		if isWouldBlock(err) {
			return 0, nil
		}
		return 0, lastError(err)
	}
	return n, nil
}

// Close unregisters the socket from its reactor and closes the fd.
func (s *TCPSocket) Close() error {
	if s.state == connClosed {
		return nil
	}
	s.state = connClosed
	if s.fd < 0 {
		return nil
	}
	_ = s.reactor.unregisterFD(s.fd)
	fd := s.fd
	s.fd = -1
	return unix.Close(fd)
}

// fionread returns the number of bytes currently available to read on
// fd, via the FIONREAD ioctl.
func fionread(fd int) (int, error) {
	var n int
	err := retryEINTR(func() error {
		var e error
		n, e = unix.IoctlGetInt(fd, unix.FIONREAD)
		return e
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func addrPortToSockaddr(addr netip.AddrPort) unix.Sockaddr {
	if addr.Addr().Is4() {
		sa := &unix.SockaddrInet4{Port: int(addr.Port())}
		sa.Addr = addr.Addr().As4()
		return sa
	}
	sa := &unix.SockaddrInet6{Port: int(addr.Port())}
	sa.Addr = addr.Addr().As16()
	return sa
}
