package netcore

import "fmt"

// Flags is a bitset of listener options: each bit is independent and
// maps to one setsockopt or process-wide behavior applied during bind.
type Flags uint32

const (
	// ReuseAddr allows rebind of a recently closed socket (SO_REUSEADDR).
	ReuseAddr Flags = 1 << iota
	// Linger sets a bounded linger on close (SO_LINGER, 1 second).
	Linger
	// FastOpen enables TCP Fast Open with a queue hint of 5 (TCP_FASTOPEN).
	FastOpen
	// NoDelay disables Nagle's algorithm (TCP_NODELAY).
	NoDelay
	// InstallSignalHandler installs a process-wide SIGINT handler that
	// closes the listen socket and unblocks the accept loop.
	InstallSignalHandler
)

// lingerSeconds and fastOpenQueue are fixed values rather than tunables.
const (
	lingerSeconds = 1
	fastOpenQueue = 5
)

// Has reports whether every bit in want is set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}

// String renders the set flags for diagnostic logging.
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	names := []struct {
		bit  Flags
		name string
	}{
		{ReuseAddr, "ReuseAddr"},
		{Linger, "Linger"},
		{FastOpen, "FastOpen"},
		{NoDelay, "NoDelay"},
		{InstallSignalHandler, "InstallSignalHandler"},
	}
	s := ""
	for _, n := range names {
		if f.Has(n.bit) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return fmt.Sprintf("unknown(%#x)", uint32(f))
	}
	return s
}

// Options bundles the bind-time configuration applied by init, per the
// Listener state invariant: once bind succeeds these are immutable for
// the lifetime of the Listener.
type Options struct {
	Flags Flags
}
