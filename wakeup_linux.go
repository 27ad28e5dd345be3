//go:build linux

package reactor

import (
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// wakeFd wraps a Linux eventfd used to turn an asynchronous signal (a
// context cancellation, a cross-thread channel send) into something
// epoll_wait can block on. Exactly one wake is ever outstanding at a
// time: the notified flag turns repeated calls to notify before the
// reader drains into a single eventfd write, so callers don't need to
// serialize their own notify calls.
type wakeFd struct {
	fd       int
	notified atomic.Bool
}

func newWakeFd() (*wakeFd, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, err
	}
	return &wakeFd{fd: fd}, nil
}

// notify arms the eventfd exactly once; subsequent calls before the next
// drain are no-ops, matching the "exactly one wake outstanding" rule.
func (w *wakeFd) notify() error {
	if !w.notified.CompareAndSwap(false, true) {
		return nil
	}
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(w.fd, buf[:])
	return err
}

// drain reads and discards the eventfd's counter, re-arming it for the
// next notify.
func (w *wakeFd) drain() {
	w.notified.Store(false)
	var buf [8]byte
	for {
		_, err := unix.Read(w.fd, buf[:])
		if err != nil {
			return
		}
	}
}

func (w *wakeFd) close() error {
	return unix.Close(w.fd)
}
