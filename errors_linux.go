//go:build linux

package reactor

import (
	"golang.org/x/sys/unix"
)

// translateErrno maps a raw errno to an IOError, attaching the kernel's
// own error string as Detail when withDetail is true. Errno is classified
// one arm at a time (EOF, ECONNREFUSED, ECONNRESET, EPERM/EACCES, EPIPE,
// ENOTCONN, ECONNABORTED, EADDRNOTAVAIL/EADDRINUSE folded into
// ConnectionRefused, EAGAIN/EWOULDBLOCK) rather than reaching for Go's
// generic os.SyscallError classification, so callers get a small, stable
// taxonomy instead of raw errno leakage.
func translateErrno(errno unix.Errno, withDetail bool) *IOError {
	kind, desc := classifyErrno(errno)
	e := &IOError{Kind: kind, Desc: desc}
	if withDetail {
		e.Detail = errno.Error()
	}
	return e
}

func classifyErrno(errno unix.Errno) (IOErrorKind, string) {
	switch errno {
	case 0:
		return KindEndOfFile, "end of file"
	case unix.ECONNREFUSED:
		return KindConnectionRefused, "connection refused"
	case unix.ECONNRESET:
		return KindConnectionReset, "connection reset"
	case unix.EPERM, unix.EACCES:
		return KindPermissionDenied, "permission denied"
	case unix.EPIPE:
		return KindBrokenPipe, "broken pipe"
	case unix.ENOTCONN:
		return KindNotConnected, "not connected"
	case unix.ECONNABORTED:
		return KindConnectionAborted, "connection aborted"
	case unix.EADDRNOTAVAIL:
		return KindConnectionRefused, "address not available"
	case unix.EADDRINUSE:
		return KindConnectionRefused, "address in use"
	case unix.EAGAIN, unix.EWOULDBLOCK:
		return KindResourceUnavailable, "resource temporarily unavailable"
	default:
		return KindOtherIOError, "unknown error"
	}
}

// lastError translates the errno returned by a failed syscall into an
// IOError, including the OS detail string. Callers pass the errno they
// already have (typically recovered via errors.As from the x/sys/unix
// call) rather than re-reading a thread-local, since Go's unix package
// already returns errno as the error value.
func lastError(err error) *IOError {
	errno, ok := err.(unix.Errno)
	if !ok {
		return &IOError{Kind: KindOtherIOError, Desc: "unknown error", Detail: err.Error()}
	}
	return translateErrno(errno, true)
}

// isRetriable reports whether a syscall should be retried after this
// error (EINTR only).
func isRetriable(err error) bool {
	return err == unix.EINTR
}

// isWouldBlock reports whether err is EAGAIN/EWOULDBLOCK.
func isWouldBlock(err error) bool {
	return err == unix.EAGAIN || err == unix.EWOULDBLOCK
}

// retryEINTR invokes f, retrying while it returns EINTR.
func retryEINTR(f func() error) error {
	for {
		err := f()
		if err != nil && isRetriable(err) {
			continue
		}
		return err
	}
}
