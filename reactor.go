package netcore

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/walkon/netcore/internal/logging"
)

// HandlerKey is the opaque token returned by Reactor.AddHandler, used to
// look up the worker-cloned Transport instances of that handler kind.
type HandlerKey int

// Reactor is the fixed-size worker pool. One OS
// goroutine drives each worker's Transport.Run loop; the Reactor itself
// owns only their lifecycle, not their I/O.
type Reactor struct {
	mu          sync.Mutex
	workerCount int
	initialized bool
	running     bool
	kinds       [][]Transport // kinds[key] -> stable-ordered per-worker instances
	stop        chan struct{}
	group       *errgroup.Group
}

// Init allocates worker_count worker contexts. It must be called before
// AddHandler or Run.
func (r *Reactor) Init(workerCount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if workerCount <= 0 {
		return fmt.Errorf("netcore: reactor: worker_count must be positive, got %d", workerCount)
	}
	if r.running {
		return fmt.Errorf("netcore: reactor: init called after run")
	}
	r.workerCount = workerCount
	r.initialized = true
	r.stop = make(chan struct{})
	return nil
}

// AddHandler registers a handler kind, producing exactly worker_count
// live Transport instances by invoking h.NewTransport() once per
// worker. It must be called before Run.
func (r *Reactor) AddHandler(h Handler) (HandlerKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.initialized {
		return 0, fmt.Errorf("netcore: reactor: init must be called before add_handler")
	}
	if r.running {
		return 0, fmt.Errorf("netcore: reactor: add_handler called after run")
	}
	instances := make([]Transport, r.workerCount)
	for i := 0; i < r.workerCount; i++ {
		instances[i] = h.NewTransport()
	}
	key := HandlerKey(len(r.kinds))
	r.kinds = append(r.kinds, instances)
	return key, nil
}

// Handlers returns the per-worker instances registered under key, in a
// stable order that never changes for the lifetime of the Reactor --
// this is what makes fd%N dispatch stable across calls.
func (r *Reactor) Handlers(key HandlerKey) ([]Transport, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(key) < 0 || int(key) >= len(r.kinds) {
		return nil, fmt.Errorf("netcore: reactor: unknown handler key %d", key)
	}
	return r.kinds[key], nil
}

// Run starts one goroutine per worker per registered handler kind, each
// calling that worker's Transport.Run(stop). A panic inside a worker is
// recovered and surfaces as this reactor's first Shutdown error via the
// errgroup, rather than crashing the process.
func (r *Reactor) Run() error {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return fmt.Errorf("netcore: reactor: init must be called before run")
	}
	if r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = true
	r.group = &errgroup.Group{}
	stop := r.stop
	kinds := r.kinds
	r.mu.Unlock()

	for _, instances := range kinds {
		for _, t := range instances {
			t := t
			r.group.Go(func() (err error) {
				defer func() {
					if p := recover(); p != nil {
						err = fmt.Errorf("netcore: reactor: worker panic: %v", p)
						logging.Errorf("reactor worker panic", zap.Any("panic", p))
					}
				}()
				t.Run(stop)
				return nil
			})
		}
	}
	return nil
}

// Shutdown requests every worker to exit its loop and waits for them.
// Idempotent: calling it again after workers have already exited is a
// no-op that returns nil.
func (r *Reactor) Shutdown() error {
	r.mu.Lock()
	if !r.initialized || !r.running {
		r.mu.Unlock()
		return nil
	}
	stop := r.stop
	group := r.group
	r.running = false
	r.mu.Unlock()

	select {
	case <-stop:
		// already closed by a concurrent Shutdown call
	default:
		close(stop)
	}

	if group == nil {
		return nil
	}
	return group.Wait()
}
