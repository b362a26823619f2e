package netcore

import "time"

// ResourceUsage is a point-in-time CPU usage snapshot, microsecond
// precision -- a per-thread/process resource-usage query.
type ResourceUsage struct {
	UserTime   time.Duration
	SystemTime time.Duration
}

// totalMicros is the (user+sys) figure the load-sampling formula is
// defined over.
func (u ResourceUsage) totalMicros() int64 {
	return (u.UserTime + u.SystemTime).Microseconds()
}

// UsageResult is what a UsageFuture eventually resolves to.
type UsageResult struct {
	Usage ResourceUsage
	Err   error
}

// UsageFuture is a future<ResourceUsage>: a receive-only channel that
// yields exactly one UsageResult and is then done.
type UsageFuture <-chan UsageResult

// Transport is the per-worker I/O handler owned by the Reactor.
// Its internals (protocol parsing, buffering, connection state) are
// explicitly out of this core's scope; only the hand-off and
// load-reporting surface is specified.
type Transport interface {
	// HandleNewPeer takes ownership of peer and schedules it on this
	// transport's worker. It must not block the caller (the accept
	// thread) -- implementations queue the peer and return.
	HandleNewPeer(peer *Peer) error

	// Load returns a future resolving to this worker's cumulative CPU
	// usage (user + system time).
	Load() UsageFuture

	// Run owns this worker's event loop: it is invoked once, on a
	// dedicated worker goroutine, by the Reactor, and must return when
	// stop is closed. Each worker runs an independent event loop thread,
	// and the core treats the Transport instance as the owner of that
	// loop, since its internals are out of scope.
	Run(stop <-chan struct{})
}

// Handler is the upstream factory the Reactor clones per worker to
// produce Transport instances: the reactor calls NewTransport once per
// worker so each gets its own live instance rather than sharing one.
type Handler interface {
	NewTransport() Transport
}

// Versioned is an optional capability a Handler may implement to
// advertise a semantic version for compatibility diagnostics; see
// Listener.SetHandler.
type Versioned interface {
	Version() string
}
