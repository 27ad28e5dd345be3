//go:build linux

package reactor

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

// TCPServerSocket is a non-blocking TCP listening socket integrated with
// a Reactor. A single EventClientConnected event is emitted per
// readiness edge, regardless of how many connections the kernel actually
// has queued; Accept should be called in a loop until it returns
// ErrResourceUnavailable.
type TCPServerSocket struct {
	reactor *Reactor
	fd      int
	id      SourceID
	state   connState
}

// NewTCPServerSocket creates a non-blocking listening socket bound to
// addr with SO_REUSEADDR set (so a restarted process can rebind a
// recently-closed port without waiting out TIME_WAIT), backed by the
// given listen backlog.
func NewTCPServerSocket(r *Reactor, addr netip.AddrPort, backlog int) (*TCPServerSocket, error) {
	domain := unix.AF_INET
	if addr.Addr().Is6() && !addr.Addr().Is4In4() {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, WrapError("tcp: socket", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, WrapError("tcp: setsockopt SO_REUSEADDR", err)
	}

	if err := unix.Bind(fd, addrPortToSockaddr(addr)); err != nil {
		_ = unix.Close(fd)
		return nil, WrapError("tcp: bind", err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, WrapError("tcp: listen", err)
	}

	s := &TCPServerSocket{reactor: r, fd: fd, state: connConnected}
	if err := r.registerFD(fd, ioRead, &s.id, s.onReadable); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	return s, nil
}

func (s *TCPServerSocket) sourceID() *SourceID { return &s.id }

// onReadable emits EventClientConnected on a readable edge; on EPOLLERR
// it recovers the underlying errno the same way a connected TCPSocket
// does (a bare accept4 call, since the listening socket has no
// equivalent of a zero-length read), then closes the listener.
func (s *TCPServerSocket) onReadable(events ioEvents) {
	if events&ioError != 0 {
		err := retryEINTR(func() error {
			_, _, e := unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
			return e
		})
		if err == nil || isWouldBlock(err) {
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
	s.reactor.emit(Event{Type: EventClientConnected, Source: &s.id})
}

// Accept accepts one pending connection as a connected TCPSocket.
// Returns ErrResourceUnavailable if none is currently pending.
func (s *TCPServerSocket) Accept() (*TCPSocket, netip.AddrPort, error) {
	if s.state != connConnected {
		return nil, netip.AddrPort{}, ErrClosed
	}
	var fd int
	var sa unix.Sockaddr
	err := retryEINTR(func() error {
		var e error
		fd, sa, e = unix.Accept4(s.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		return e
	})
	if err != nil {
		if isWouldBlock(err) {
			return nil, netip.AddrPort{}, ErrResourceUnavailable
		}
		return nil, netip.AddrPort{}, lastError(err)
	}
	if err := unix.SetNonblock(fd, false); err != nil {
		_ = unix.Close(fd)
		return nil, netip.AddrPort{}, lastError(err)
	}

	client := &TCPSocket{reactor: s.reactor, fd: fd, state: connConnected}
	if regErr := s.reactor.registerFD(fd, ioRead, &client.id, client.onEpollEvent); regErr != nil {
		_ = unix.Close(fd)
		return nil, netip.AddrPort{}, regErr
	}
	s.reactor.metrics.recordConnection()
	return client, sockaddrToAddrPort(sa), nil
}

// Close unregisters the listening socket from its reactor and closes it.
func (s *TCPServerSocket) Close() error {
	if s.state == connClosed {
		return nil
	}
	s.state = connClosed
	_ = s.reactor.unregisterFD(s.fd)
	return unix.Close(s.fd)
}

func sockaddrToAddrPort(sa unix.Sockaddr) netip.AddrPort {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(a.Addr), uint16(a.Port))
	case *unix.SockaddrInet6:
		return netip.AddrPortFrom(netip.AddrFrom16(a.Addr), uint16(a.Port))
	default:
		return netip.AddrPort{}
	}
}
