//go:build linux
// +build linux

package socket

import (
	"testing"

	"golang.org/x/sys/unix"
)

func TestSetFastOpen(t *testing.T) {
	fd, err := Create(unix.AF_INET)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Close(fd)

	// TCP_FASTOPEN requires CAP_NET_ADMIN in some kernel configs when
	// net.ipv4.tcp_fastopen hasn't enabled it; tolerate EPERM/EINVAL so
	// this test exercises the call path without depending on host sysctls.
	if err := SetFastOpen(fd, 5); err != nil {
		if err != unix.EPERM && err != unix.EINVAL {
			t.Fatalf("SetFastOpen: %v", err)
		}
	}
}
