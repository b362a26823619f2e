//go:build freebsd || dragonfly || netbsd || openbsd || darwin
// +build freebsd dragonfly netbsd openbsd darwin

package echo

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/walkon/netcore"
)

// currentThreadUsage falls back to RUSAGE_SELF on BSD/Darwin, where
// x/sys/unix does not expose a per-thread rusage query; the returned
// figure is process-wide rather than per-worker on these platforms.
func currentThreadUsage() (netcore.ResourceUsage, error) {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return netcore.ResourceUsage{}, err
	}
	return netcore.ResourceUsage{
		UserTime:   time.Duration(ru.Utime.Nano()) * time.Nanosecond,
		SystemTime: time.Duration(ru.Stime.Nano()) * time.Nanosecond,
	}, nil
}
