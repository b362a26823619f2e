//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

// Package netcore implements the connection acceptance and dispatch
// core of an HTTP server framework: it binds a TCP listening socket,
// accepts connections, and fans them out across a fixed pool of worker
// reactors. Protocol parsing, TLS, and per-request scheduling are
// deliberately out of scope, left to whatever consumes a Transport.
package netcore

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/walkon/netcore/internal/logging"
	"github.com/walkon/netcore/internal/netpoll"
	"github.com/walkon/netcore/internal/socket"
)

// MaxBacklog and DefaultWorkers are the implementation constants the
// bind protocol calls for.
const (
	MaxBacklog = 128
)

// DefaultWorkers returns the hardware concurrency count, gnet's own
// default for NumEventLoop when Multicore is requested without an
// explicit count.
func DefaultWorkers() int { return runtime.NumCPU() }

// globalListenFD mirrors whichever Listener most recently bound or shut
// down in this process, for diagnostics that have no Listener reference
// to hand -- a SIGUSR1 dump, an admin endpoint, a crash handler. It is
// not on Run's control-flow path; shutdown itself goes through
// ShutdownNotifier's self-pipe, not this sentinel.
var globalListenFD atomic.Int64

func init() {
	globalListenFD.Store(-1)
}

// CurrentListenFD reports the fd most recently bound via Bind, or -1 if
// the last lifecycle event in this process was a Shutdown (or nothing
// has bound yet). With multiple Listener instances in one process this
// reflects only the most recent one; callers that need a specific
// Listener's fd should keep a reference to it instead.
func CurrentListenFD() int {
	return int(globalListenFD.Load())
}

// Listener owns the listening socket, its configuration, and the
// Reactor lifecycle.
type Listener struct {
	mu sync.Mutex

	address Address
	options Options
	backlog int

	workerCount int

	handler Handler

	listenFD int // -1 when unbound
	bound    bool

	poller           netpoll.Poller
	shutdownNotifier ShutdownNotifier
	reactor          *Reactor
	transportKindKey HandlerKey
}

// New returns an unbound Listener with default configuration.
func New() *Listener {
	return &Listener{
		backlog:     MaxBacklog,
		workerCount: DefaultWorkers(),
		listenFD:    -1,
	}
}

// NewWithAddress returns an unbound Listener that will bind to addr
// when Bind() is called with no arguments.
func NewWithAddress(addr Address) *Listener {
	l := New()
	l.address = addr
	return l
}

// Init overwrites worker_count, options, and backlog. It must be called
// before Bind.
func (l *Listener) Init(workerCount int, options Options, backlog int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bound {
		return errInitAfterBind
	}
	if workerCount <= 0 {
		workerCount = DefaultWorkers()
	}
	if backlog <= 0 {
		backlog = MaxBacklog
	}
	l.workerCount = workerCount
	l.options = options
	l.backlog = backlog
	return nil
}

// SetHandler stores the upstream Handler factory. Bind fails without
// one. If h also implements Versioned, its advertised version is
// validated as semver and a parse failure is logged as a warning --
// never a hard error, since handler/core compatibility gating is a
// forward-looking convenience, not a contract requirement.
func (l *Listener) SetHandler(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.handler = h
	if v, ok := h.(Versioned); ok {
		validateHandlerVersion(v.Version())
	}
}

// IsBound reports whether Bind has succeeded and Shutdown has not yet
// been called.
func (l *Listener) IsBound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Address returns the address this listener was constructed or bound
// with.
func (l *Listener) Address() Address {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.address
}

// Options returns the options this listener was configured with.
func (l *Listener) Options() Options {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.options
}

// GetPort returns 0 if unbound, else the kernel-assigned port read via
// the socket's local name. Only meaningful from a thread other than the
// one running Run, since Run does not return until shutdown.
func (l *Listener) GetPort() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.bound {
		return 0
	}
	port, err := socket.LocalPort(l.listenFD)
	if err != nil {
		return 0
	}
	return port
}

// Bind resolves and binds to addr. Bind() with no arguments
// binds to the address supplied at construction.
func (l *Listener) Bind(addr ...Address) error {
	l.mu.Lock()
	if l.bound {
		l.mu.Unlock()
		return errListenerAlreadyBound
	}
	if l.handler == nil {
		l.mu.Unlock()
		return errNoHandler
	}
	if len(addr) > 0 {
		l.address = addr[0]
	}
	target := l.address
	backlog := l.backlog
	opts := l.options
	workers := l.workerCount
	l.mu.Unlock()

	if opts.Flags.Has(InstallSignalHandler) {
		if err := installSignalHandler(l); err != nil {
			return fmt.Errorf("netcore: install signal handler: %w", err)
		}
	}

	candidates, err := resolveCandidates(context.Background(), target)
	if err != nil {
		return err
	}

	fd, boundSA, lastErr := bindFirstListening(candidates, opts, backlog)
	if fd < 0 {
		return fmt.Errorf("netcore: bind: all candidates exhausted: %w", lastErr)
	}
	_ = boundSA

	if err := socket.SetNonblock(fd); err != nil {
		socket.Close(fd)
		return err
	}

	poller, err := netpoll.New()
	if err != nil {
		socket.Close(fd)
		return err
	}
	if err := poller.Add(fd, netpoll.Read, netpoll.Tag(fd)); err != nil {
		poller.Close()
		socket.Close(fd)
		return err
	}

	reactor := &Reactor{}
	if err := reactor.Init(workers); err != nil {
		poller.Close()
		socket.Close(fd)
		return err
	}

	l.mu.Lock()
	l.listenFD = fd
	l.poller = poller
	l.reactor = reactor
	l.bound = true
	l.mu.Unlock()

	globalListenFD.Store(int64(fd))

	key, err := reactor.AddHandler(l.handler)
	if err != nil {
		l.mu.Lock()
		l.bound = false
		l.mu.Unlock()
		poller.Close()
		socket.Close(fd)
		return err
	}
	l.mu.Lock()
	l.transportKindKey = key
	l.mu.Unlock()

	logging.Infof("listener bound",
		zap.String("address", target.String()),
		zap.Int("workers", workers),
		zap.Int("backlog", backlog),
		zap.String("options", opts.Flags.String()),
		zap.Int("listen_fd", CurrentListenFD()),
	)
	return nil
}

// bindFirstListening walks candidates in order, applying options and
// stopping on the first successful listen(2).
func bindFirstListening(candidates []bindCandidate, opts Options, backlog int) (fd int, sa interface{}, lastErr error) {
	for _, c := range candidates {
		cfd, err := socket.Create(c.family)
		if err != nil {
			lastErr = err
			continue
		}

		if err := socket.Apply(cfd, socketOptionsFor(opts)); err != nil {
			lastErr = err
			socket.Close(cfd)
			continue
		}

		csa, err := socket.SockaddrFor(c.family, c.ip, c.port)
		if err != nil {
			lastErr = err
			socket.Close(cfd)
			continue
		}
		if err := socket.Bind(cfd, csa); err != nil {
			lastErr = err
			socket.Close(cfd)
			continue
		}

		// listen(2) is not tolerant of failure: a failed listen aborts
		// with a system error rather than trying the next candidate.
		if err := socket.Listen(cfd, backlog); err != nil {
			return -1, nil, fmt.Errorf("netcore: listen: %w", err)
		}
		return cfd, csa, nil
	}
	return -1, nil, lastErr
}

func socketOptionsFor(opts Options) []socket.Option {
	var out []socket.Option
	if opts.Flags.Has(ReuseAddr) {
		out = append(out, socket.Option{SetSockopt: socket.SetReuseAddr, Opt: 1})
	}
	if opts.Flags.Has(Linger) {
		out = append(out, socket.Option{SetSockopt: socket.SetLinger, Opt: lingerSeconds})
	}
	if opts.Flags.Has(FastOpen) {
		out = append(out, socket.Option{SetSockopt: socket.SetFastOpen, Opt: fastOpenQueue})
	}
	if opts.Flags.Has(NoDelay) {
		out = append(out, socket.Option{SetSockopt: socket.SetNoDelay, Opt: 1})
	}
	return out
}

// Run executes the accept loop on the calling goroutine. Preconditions:
// Bind has succeeded. ready, if non-nil, is closed once the loop has
// started the reactor and is about to begin polling (the "one-shot
// promise".
func (l *Listener) Run(ready chan<- struct{}) error {
	l.mu.Lock()
	if !l.bound {
		l.mu.Unlock()
		return errNotBound
	}
	poller := l.poller
	reactor := l.reactor
	listenFD := l.listenFD
	l.mu.Unlock()

	shutdownTag := netpoll.Tag(^uint64(0)) // distinct from any real fd
	if err := l.shutdownNotifier.Bind(poller, shutdownTag); err != nil {
		return fmt.Errorf("netcore: bind shutdown notifier: %w", err)
	}

	if err := reactor.Run(); err != nil {
		return err
	}

	if ready != nil {
		close(ready)
	}

	events := make([]netpoll.Event, netpoll.DefaultBatch)
	for {
		n, err := poller.Poll(events, netpoll.DefaultBatch, -1*time.Nanosecond)
		if err != nil {
			if err == netpoll.ErrInterrupted {
				// A signal not routed through the ShutdownNotifier's
				// self-pipe hit the wait syscall; retry rather than
				// special-casing EINTR, preferring the self-pipe wakeup
				// over a raw atomic-sentinel/EINTR scheme.
				continue
			}
			return newServerError(err)
		}

		shuttingDown := false
		for i := 0; i < n; i++ {
			ev := events[i]
			if ev.Tag == l.shutdownNotifier.Tag() {
				l.shutdownNotifier.Drain()
				shuttingDown = true
				continue
			}
			if ev.Tag == netpoll.Tag(listenFD) && ev.Readiness&netpoll.Read != 0 {
				if serr := l.handleNewConnection(); serr != nil {
					if se, ok := serr.(*ServerError); ok {
						logging.Errorf("accept loop: fatal", zap.Error(se))
						return se
					}
					logging.Warnf("accept loop: recoverable", zap.Error(serr))
				}
			}
		}
		// Processing every event in the batch before returning keeps
		// shutdown strictly after accepts already dispatched in the
		// same wakeup, even when the notifier's event sorts earlier.
		if shuttingDown {
			return nil
		}
	}
}

// RunThreaded spawns a dedicated goroutine running Run(ready) and keeps
// its completion trackable via the returned wait function, mirroring
// the "stores its join handle for destructor cleanup" requirement --
// Go has no destructors, so the join handle is returned for the caller
// to invoke instead of being implicit.
func (l *Listener) RunThreaded(ready chan<- struct{}) (join func() error) {
	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Run(ready)
	}()
	return func() error { return <-errCh }
}

// handleNewConnection implements the accept step of the bind protocol.
func (l *Listener) handleNewConnection() error {
	l.mu.Lock()
	fd := l.listenFD
	l.mu.Unlock()

	nfd, sa, err := socket.AcceptRaw(fd)
	if err != nil {
		if socket.IsFatalAcceptError(err) {
			return newServerError(err)
		}
		return newSocketError(err)
	}

	if err := socket.SetNonblock(nfd); err != nil {
		socket.Close(nfd)
		return newSocketError(err)
	}

	host, port := socket.AddrFromSockaddr(sa)
	peer := newPeer(Address{Host: host, Port: uint16(port)}, nfd)
	return l.dispatchPeer(peer)
}

// dispatchPeer implements the dispatch step: fd % worker_count,
// allocation-free beyond the Peer itself.
func (l *Listener) dispatchPeer(peer *Peer) error {
	l.mu.Lock()
	reactor := l.reactor
	key := l.transportKindKey
	l.mu.Unlock()

	handlers, err := reactor.Handlers(key)
	if err != nil {
		return newServerError(err)
	}
	if len(handlers) == 0 {
		return newServerError(errNoWorkers)
	}
	idx := peer.FD % len(handlers)
	return handlers[idx].HandleNewPeer(peer)
}

// Shutdown fires the ShutdownNotifier (if bound) and tells the reactor
// to stop. Idempotent. After Shutdown, the Listener is not reusable.
func (l *Listener) Shutdown() error {
	l.mu.Lock()
	if !l.bound {
		l.mu.Unlock()
		return nil
	}
	l.bound = false
	fd := l.listenFD
	l.listenFD = -1
	reactor := l.reactor
	poller := l.poller
	l.mu.Unlock()

	globalListenFD.Store(-1)

	var errs error
	if err := l.shutdownNotifier.Notify(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if reactor != nil {
		errs = multierr.Append(errs, reactor.Shutdown())
	}
	errs = multierr.Append(errs, l.shutdownNotifier.Close())
	if poller != nil {
		errs = multierr.Append(errs, poller.Remove(fd))
		errs = multierr.Append(errs, poller.Close())
	}
	errs = multierr.Append(errs, socket.Close(fd))

	logging.Infof("listener shut down", zap.Error(errs))
	return errs
}

// PinWorker is reserved for CPU affinity per worker; unimplemented, per
// the Pinning stub design note.
func (l *Listener) PinWorker(worker int, cpuSet []int) error {
	return nil
}
