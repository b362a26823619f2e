//go:build freebsd || dragonfly || netbsd || openbsd || darwin
// +build freebsd dragonfly netbsd openbsd darwin

package netpoll

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// openNotifyFD implements the classic self-pipe trick: a byte written to
// the write end becomes readable on the read end, which is what gets
// registered with kqueue. Neither end blocks.
func openNotifyFD() (readFD int, writeFD int, err error) {
	var fds [2]int
	if err := unix.Pipe2(fds[:], unix.O_NONBLOCK|unix.O_CLOEXEC); err != nil {
		return -1, -1, fmt.Errorf("netpoll: pipe2: %w", err)
	}
	return fds[0], fds[1], nil
}

func writeNotify(fd int) error {
	_, err := unix.Write(fd, []byte{1})
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("netpoll: pipe write: %w", err)
	}
	return nil
}

func drainNotify(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if n <= 0 || err != nil {
			return
		}
	}
}

func closeNotifyFDs(readFD, writeFD int) error {
	err1 := unix.Close(readFD)
	err2 := unix.Close(writeFD)
	if err1 != nil {
		return err1
	}
	return err2
}
