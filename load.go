package netcore

import (
	"time"

	"go.uber.org/multierr"
)

// Load is a point-in-time utilization snapshot across every worker
// registered under one handler kind.
type Load struct {
	Tick    time.Time
	Raw     []ResourceUsage
	Workers []float64
	Global  float64
}

// RequestLoad samples per-worker CPU usage and computes a utilization
// percentage relative to previous.
// An empty previous.Raw is treated as a first sample: it returns zeroed
// percentages of the correct length rather than dividing by a zero
// elapsed time.
func (l *Listener) RequestLoad(previous Load) (Load, error) {
	l.mu.Lock()
	reactor := l.reactor
	key := l.transportKindKey
	bound := l.bound
	l.mu.Unlock()

	if !bound {
		return Load{}, errNotBound
	}

	handlers, err := reactor.Handlers(key)
	if err != nil {
		return Load{}, err
	}

	futures := make([]UsageFuture, len(handlers))
	for i, h := range handlers {
		futures[i] = h.Load()
	}

	usages := make([]ResourceUsage, len(futures))
	var errs error
	for i, f := range futures {
		result := <-f
		if result.Err != nil {
			errs = multierr.Append(errs, result.Err)
			continue
		}
		usages[i] = result.Usage
	}
	if errs != nil {
		return Load{}, errs
	}

	now := time.Now()
	n := len(usages)

	if len(previous.Raw) == 0 {
		return Load{
			Tick:    now,
			Raw:     usages,
			Workers: make([]float64, n),
			Global:  0,
		}, nil
	}

	deltaMicros := float64(now.Sub(previous.Tick).Microseconds())
	workers := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		var prevMicros int64
		if i < len(previous.Raw) {
			prevMicros = (previous.Raw[i].UserTime + previous.Raw[i].SystemTime).Microseconds()
		}
		nowMicros := (usages[i].UserTime + usages[i].SystemTime).Microseconds()
		usedMicros := float64(nowMicros - prevMicros)

		pct := 0.0
		if deltaMicros > 0 {
			pct = 100 * usedMicros / deltaMicros
		}
		workers[i] = pct
		sum += pct
	}

	global := 0.0
	if n > 0 {
		global = sum / float64(n)
	}

	return Load{
		Tick:    now,
		Raw:     usages,
		Workers: workers,
		Global:  global,
	}, nil
}
