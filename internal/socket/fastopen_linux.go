//go:build linux
// +build linux

package socket

import "golang.org/x/sys/unix"

// SetFastOpen sets TCP_FASTOPEN to the given queue length hint.
func SetFastOpen(fd int, queueLen int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_FASTOPEN, queueLen)
}
