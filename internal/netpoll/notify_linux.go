//go:build linux
// +build linux

package netpoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// openNotifyFD returns a single descriptor suitable for both the write
// side (notify) and the read side (register with the poller): on Linux
// that is an eventfd, which natively coalesces repeated writes into one
// pending readiness edge and needs no drain-loop bookkeeping.
func openNotifyFD() (readFD int, writeFD int, err error) {
	fd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return -1, -1, fmt.Errorf("netpoll: eventfd: %w", err)
	}
	return fd, fd, nil
}

func writeNotify(fd int) error {
	var buf [8]byte
	buf[7] = 1
	_, err := unix.Write(fd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("netpoll: eventfd write: %w", err)
	}
	return nil
}

func drainNotify(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
}

func closeNotifyFDs(readFD, writeFD int) error {
	// Same fd on Linux (eventfd): close once.
	return unix.Close(readFD)
}
