//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

// Package socket provides the low-level socket-creation and
// setsockopt helpers the Listener's bind protocol orchestrates,
// mirroring gnet's internal/socket package layout and its
// Option{SetSockopt, Opt} call convention.
package socket

import (
	"errors"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// Option pairs a setsockopt function with the value to apply, the same
// shape gnet's internal/socket package uses for its NewTCPConnFd option
// list (socket.Option{SetSockopt: socket.SetNoDelay, Opt: 1}).
type Option struct {
	SetSockopt func(fd int, opt int) error
	Opt        int
}

// Apply runs every option against fd, stopping at the first failure.
func Apply(fd int, opts []Option) error {
	for _, o := range opts {
		if err := o.SetSockopt(fd, o.Opt); err != nil {
			return err
		}
	}
	return nil
}

// SetReuseAddr sets SO_REUSEADDR.
func SetReuseAddr(fd int, opt int) error {
	return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, opt)
}

// SetNoDelay sets TCP_NODELAY.
func SetNoDelay(fd int, opt int) error {
	return unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, opt)
}

// SetLinger sets SO_LINGER with the given linger time in seconds.
func SetLinger(fd int, seconds int) error {
	return unix.SetsockoptLinger(fd, unix.SOL_SOCKET, unix.SO_LINGER, &unix.Linger{
		Onoff:  1,
		Linger: int32(seconds),
	})
}

// Create allocates a stream socket for the given address family. The
// descriptor is left in blocking mode; SetNonblock changes that.
func Create(family int) (int, error) {
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("socket: socket(%d): %w", family, err)
	}
	return fd, nil
}

// Bind binds fd to sa.
func Bind(fd int, sa unix.Sockaddr) error {
	if err := unix.Bind(fd, sa); err != nil {
		return fmt.Errorf("socket: bind: %w", err)
	}
	return nil
}

// Listen marks fd as a passive socket with the given backlog. Per the
// bind protocol, a failed listen is not tolerant of
// retry -- the caller should treat this as fatal, not continue to the
// next candidate.
func Listen(fd int, backlog int) error {
	if err := unix.Listen(fd, backlog); err != nil {
		return fmt.Errorf("socket: listen: %w", err)
	}
	return nil
}

// SetNonblock puts fd in non-blocking mode.
func SetNonblock(fd int) error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return fmt.Errorf("socket: set_nonblock: %w", err)
	}
	return nil
}

// LocalPort reads the kernel-assigned port via getsockname, used by
// Listener.GetPort after binding to port 0.
func LocalPort(fd int) (int, error) {
	sa, err := unix.Getsockname(fd)
	if err != nil {
		return 0, fmt.Errorf("socket: getsockname: %w", err)
	}
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return v.Port, nil
	case *unix.SockaddrInet6:
		return v.Port, nil
	default:
		return 0, fmt.Errorf("socket: getsockname: unsupported sockaddr type %T", sa)
	}
}

// AcceptRaw accepts one pending connection off the listening fd,
// returning the new descriptor and its peer address exactly as the
// kernel reported it -- the caller is responsible for SetNonblock.
func AcceptRaw(fd int) (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept(fd)
	if err != nil {
		return -1, nil, err
	}
	return nfd, sa, nil
}

// IsFatalAcceptError reports whether err should abort the accept loop
// (a ServerError) rather than just be logged and skipped
// (a SocketError): EBADF/ENOTSOCK mean the listening descriptor itself
// is no longer a valid socket, so further accepts are meaningless.
// Everything else -- including EMFILE/ENFILE, which are transient fd
// exhaustion rather than a broken listener -- is recoverable.
func IsFatalAcceptError(err error) bool {
	return errors.Is(err, unix.EBADF) || errors.Is(err, unix.ENOTSOCK)
}

// AddrFromSockaddr converts a raw unix.Sockaddr from Accept into a
// (host, port) pair; family information is discarded since the caller
// already knows it from context.
func AddrFromSockaddr(sa unix.Sockaddr) (host string, port int) {
	switch v := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(v.Addr[:]).String(), v.Port
	case *unix.SockaddrInet6:
		return net.IP(v.Addr[:]).String(), v.Port
	default:
		return "", 0
	}
}

// Close closes fd, tolerating it already being closed/invalid.
func Close(fd int) error {
	if fd < 0 {
		return nil
	}
	return unix.Close(fd)
}

// SockaddrFor builds a unix.Sockaddr for the given family/ip/port triple.
func SockaddrFor(family int, ip []byte, port int) (unix.Sockaddr, error) {
	switch family {
	case unix.AF_INET:
		var sa unix.SockaddrInet4
		sa.Port = port
		ip4 := normalizeTo4(ip)
		copy(sa.Addr[:], ip4)
		return &sa, nil
	case unix.AF_INET6:
		var sa unix.SockaddrInet6
		sa.Port = port
		copy(sa.Addr[:], normalizeTo16(ip))
		return &sa, nil
	default:
		return nil, fmt.Errorf("socket: unsupported family %d", family)
	}
}

func normalizeTo4(ip []byte) []byte {
	if len(ip) == 4 {
		return ip
	}
	if len(ip) == 16 {
		return ip[12:16]
	}
	return []byte{0, 0, 0, 0}
}

func normalizeTo16(ip []byte) []byte {
	if len(ip) == 16 {
		return ip
	}
	out := make([]byte, 16)
	if len(ip) == 4 {
		out[10], out[11] = 0xff, 0xff
		copy(out[12:], ip)
		return out
	}
	return out
}
