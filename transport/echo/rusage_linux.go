//go:build linux
// +build linux

package echo

import (
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"github.com/walkon/netcore"
)

// currentThreadUsage reports the calling OS thread's CPU time via
// RUSAGE_THREAD, locked for the duration of the syscall so the Go
// scheduler can't migrate the calling goroutine mid-measurement.
func currentThreadUsage() (netcore.ResourceUsage, error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_THREAD, &ru); err != nil {
		return netcore.ResourceUsage{}, err
	}
	return netcore.ResourceUsage{
		UserTime:   time.Duration(ru.Utime.Nano()) * time.Nanosecond,
		SystemTime: time.Duration(ru.Stime.Nano()) * time.Nanosecond,
	}, nil
}
