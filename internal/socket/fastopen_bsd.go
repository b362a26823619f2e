//go:build freebsd || dragonfly || netbsd || openbsd || darwin
// +build freebsd dragonfly netbsd openbsd darwin

package socket

import "golang.org/x/sys/unix"

// SetFastOpen enables TCP Fast Open. Unlike Linux, BSD/Darwin's
// TCP_FASTOPEN takes a boolean enable flag rather than a queue length,
// so queueLen is accepted for call-site symmetry with the Linux variant
// but otherwise ignored.
func SetFastOpen(fd int, queueLen int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_FASTOPEN, 1)
}
