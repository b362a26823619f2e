// Package netpoll wraps the host OS's readiness-notification facility
// (epoll on Linux, kqueue on the BSDs and Darwin) behind a tag-based
// interface, mirroring gnet's internal/netpoll package.
package netpoll

import (
	"errors"
	"time"
)

// Interest is the readiness mask a descriptor is registered with.
type Interest uint8

const (
	Read Interest = 1 << iota
	Write
)

// Readiness is the mask reported back for a fired event.
type Readiness = Interest

// Tag is the opaque 64-bit value surfaced with each event. The Listener
// uses the raw descriptor number as its own tag and a distinct value
// for the ShutdownNotifier.
type Tag uint64

// Event is one (tag, readiness) pair yielded by Poll.
type Event struct {
	Tag       Tag
	Readiness Readiness
}

// ErrInterrupted is returned by Poll when the underlying wait syscall
// was interrupted by a signal not delivered through this package's own
// wakeup path. Callers distinguish this from a hard error and either
// retry or treat it as a clean shutdown signal depending on process
// state.
var ErrInterrupted = errors.New("netpoll: interrupted")

// DefaultBatch is the batch size the accept loop polls with.
const DefaultBatch = 128

// Poller is the facade every OS backend implements.
type Poller interface {
	// Add registers fd with the given interest; future events on fd
	// surface with tag.
	Add(fd int, interest Interest, tag Tag) error
	// Remove deregisters fd.
	Remove(fd int) error
	// Poll blocks up to timeout (negative means indefinite), writes up
	// to max events into out, and returns the count. It returns
	// ErrInterrupted, not a count, when interrupted.
	Poll(out []Event, max int, timeout time.Duration) (int, error)
	// Close releases the underlying OS handle.
	Close() error
}

// New returns the platform poller backend.
func New() (Poller, error) {
	return newPoller()
}
