package reactor

import (
	"errors"
	"fmt"
)

// IOErrorKind classifies the readiness-derived and per-operation errors
// the reactor and its sources can surface. It deliberately mirrors a
// POSIX errno taxonomy rather than Go's os.* sentinel errors, because
// the reactor translates raw errno values itself (see errors_linux.go)
// instead of going through the os package's file-based error wrapping.
type IOErrorKind int

const (
	// KindOtherIOError is used when no more specific kind applies.
	KindOtherIOError IOErrorKind = iota
	// KindEndOfFile indicates a read observed orderly stream closure.
	KindEndOfFile
	// KindConnectionRefused indicates the peer actively refused the connection.
	KindConnectionRefused
	// KindConnectionReset indicates the peer reset the connection.
	KindConnectionReset
	// KindPermissionDenied indicates EPERM/EACCES.
	KindPermissionDenied
	// KindBrokenPipe indicates EPIPE.
	KindBrokenPipe
	// KindNotConnected indicates ENOTCONN.
	KindNotConnected
	// KindConnectionAborted indicates ECONNABORTED.
	KindConnectionAborted
	// KindResourceUnavailable indicates EAGAIN/EWOULDBLOCK.
	KindResourceUnavailable
	// KindClosed indicates the operation was attempted on a source that
	// has already transitioned to its terminal Closed state.
	KindClosed
)

// String returns a human-readable label for the kind.
func (k IOErrorKind) String() string {
	switch k {
	case KindEndOfFile:
		return "EndOfFile"
	case KindConnectionRefused:
		return "ConnectionRefused"
	case KindConnectionReset:
		return "ConnectionReset"
	case KindPermissionDenied:
		return "PermissionDenied"
	case KindBrokenPipe:
		return "BrokenPipe"
	case KindNotConnected:
		return "NotConnected"
	case KindConnectionAborted:
		return "ConnectionAborted"
	case KindResourceUnavailable:
		return "ResourceUnavailable"
	case KindClosed:
		return "Closed"
	default:
		return "OtherIoError"
	}
}

// IOError is the error type surfaced by per-operation calls (read, write,
// connect, accept) and carried by IoError events. Detail, when non-empty,
// holds the OS-level error description (e.g. from the errno translator);
// Desc is a short, kind-appropriate human description.
type IOError struct {
	Kind   IOErrorKind
	Desc   string
	Detail string
}

// Error implements the error interface.
func (e *IOError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Desc, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Desc)
}

// Is reports whether target is an *IOError with the same Kind, so callers
// can write errors.Is(err, reactor.ErrClosed) without caring about Desc
// or Detail.
func (e *IOError) Is(target error) bool {
	var other *IOError
	if errors.As(target, &other) {
		return other.Kind == e.Kind
	}
	return false
}

// ErrClosed is returned by operations attempted on a source already in
// its terminal Closed state.
var ErrClosed = &IOError{Kind: KindClosed, Desc: "source is closed"}

// ErrResourceUnavailable is returned by TCPServerSocket.Accept when no
// client connection is currently pending.
var ErrResourceUnavailable = &IOError{Kind: KindResourceUnavailable, Desc: "resource temporarily unavailable"}

// ErrReactorClosed is returned by Reactor methods once the reactor's
// epoll descriptor has been closed.
var ErrReactorClosed = errors.New("reactor: closed")

// ErrChannelDisconnected is returned by BlockingReceiver.Recv when the
// queue is empty and every Transmitter has been closed.
var ErrChannelDisconnected = errors.New("reactor: channel disconnected, no senders remain")

// WrapError wraps an error with a message, preserving the cause chain for
// errors.Is/errors.As.
func WrapError(message string, cause error) error {
	return fmt.Errorf("%s: %w", message, cause)
}
