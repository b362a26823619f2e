// Package echo is a minimal reference Transport: it reads whatever a
// peer sends and writes it back unmodified. The core's Transport
// contract deliberately leaves connection handling out of scope, so
// this package exists only to give cmd/acceptord and the integration
// tests something concrete to dispatch into.
package echo

import (
	"sync"
	"time"

	"github.com/eapache/queue"
	"github.com/panjf2000/ants/v2"
	"github.com/valyala/bytebufferpool"
	"golang.org/x/sys/unix"

	"github.com/walkon/netcore"
)

// bufSize is the per-connection read chunk size.
const bufSize = 4096

// Handler is a netcore.Handler that produces one Transport per worker,
// each backed by its own bounded goroutine pool and hand-off queue.
type Handler struct {
	PoolSize int
}

// NewTransport implements netcore.Handler.
func (h Handler) NewTransport() netcore.Transport {
	size := h.PoolSize
	if size <= 0 {
		size = 256
	}
	pool, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		// ants.NewPool only fails on a non-positive size, which is
		// excluded above; a panic here means a programming error, not
		// a runtime condition callers should handle.
		panic(err)
	}
	return &Transport{
		pool:  pool,
		queue: queue.New(),
	}
}

// Version implements netcore.Versioned purely for the demo wiring.
func (h Handler) Version() string { return "1.0.0" }

// Transport implements netcore.Transport with a non-blocking hand-off
// queue drained by Run and a bounded worker pool doing the actual
// per-connection echo I/O.
type Transport struct {
	mu    sync.Mutex
	queue *queue.Queue
	pool  *ants.Pool
}

// HandleNewPeer implements netcore.Transport. It must not block the
// accept thread, so it only pushes onto the queue; Run's goroutine later
// submits the actual read/write work to the pool.
func (t *Transport) HandleNewPeer(peer *netcore.Peer) error {
	t.mu.Lock()
	t.queue.Add(peer)
	t.mu.Unlock()
	return nil
}

// Run drains the hand-off queue until stop is closed, submitting each
// peer's connection handling to the bounded pool so a single slow
// connection cannot starve the others queued behind it.
func (t *Transport) Run(stop <-chan struct{}) {
	defer t.pool.Release()

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.drain()
		}
	}
}

func (t *Transport) drain() {
	for {
		t.mu.Lock()
		if t.queue.Length() == 0 {
			t.mu.Unlock()
			return
		}
		item := t.queue.Remove()
		t.mu.Unlock()

		peer, ok := item.(*netcore.Peer)
		if !ok {
			continue
		}
		_ = t.pool.Submit(func() { t.serve(peer) })
	}
}

// serve performs the blocking echo loop for one connection; it runs on
// an ants worker goroutine, never on the accept thread or Run's own
// goroutine.
func (t *Transport) serve(peer *netcore.Peer) {
	defer netcore.ReleasePeer(peer)
	defer unix.Close(peer.FD)

	readBuf := make([]byte, bufSize)
	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)

	for {
		n, err := unix.Read(peer.FD, readBuf)
		if err != nil || n <= 0 {
			return
		}
		out.Reset()
		out.Write(readBuf[:n])
		if writeErr := writeFull(peer.FD, out.B); writeErr != nil {
			return
		}
	}
}

func writeFull(fd int, data []byte) error {
	for len(data) > 0 {
		n, err := unix.Write(fd, data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

// Load implements netcore.Transport by reporting accumulated CPU time
// from a fresh sampling goroutine, which currentThreadUsage (platform-
// specific) locks to its OS thread for the duration of the getrusage
// call. That thread is whichever one the runtime gives the sampling
// goroutine; it is not tied to this worker's Run goroutine or to the
// pool goroutines serving its peers, so the figure does not isolate
// this worker's own CPU time.
func (t *Transport) Load() netcore.UsageFuture {
	ch := make(chan netcore.UsageResult, 1)
	go func() {
		usage, err := currentThreadUsage()
		if err != nil {
			ch <- netcore.UsageResult{Err: err}
			return
		}
		ch <- netcore.UsageResult{Usage: usage}
	}()
	return netcore.UsageFuture(ch)
}
