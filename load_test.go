package netcore

import (
	"testing"
	"time"
)

func newBoundListenerForLoadTest(t *testing.T, usages []ResourceUsage) (*Listener, HandlerKey) {
	t.Helper()
	r := &Reactor{}
	if err := r.Init(len(usages)); err != nil {
		t.Fatalf("Init: %v", err)
	}
	h := &fakeHandler{}
	key, err := r.AddHandler(h)
	if err != nil {
		t.Fatalf("AddHandler: %v", err)
	}
	for i, inst := range h.instances {
		inst.loadResult = UsageResult{Usage: usages[i]}
	}

	l := &Listener{
		bound:            true,
		reactor:          r,
		transportKindKey: key,
	}
	return l, key
}

func TestRequestLoadFirstSampleIsZero(t *testing.T) {
	l, _ := newBoundListenerForLoadTest(t, []ResourceUsage{
		{UserTime: 10 * time.Millisecond},
		{UserTime: 20 * time.Millisecond},
	})

	snap, err := l.RequestLoad(Load{})
	if err != nil {
		t.Fatalf("RequestLoad: %v", err)
	}
	if snap.Global != 0 {
		t.Errorf("Global = %v, want 0", snap.Global)
	}
	if len(snap.Workers) != 2 {
		t.Fatalf("len(Workers) = %d, want 2", len(snap.Workers))
	}
	for i, w := range snap.Workers {
		if w != 0 {
			t.Errorf("Workers[%d] = %v, want 0", i, w)
		}
	}
	if len(snap.Raw) != 2 {
		t.Errorf("len(Raw) = %d, want 2", len(snap.Raw))
	}
}

func TestRequestLoadGlobalIsMeanOfWorkers(t *testing.T) {
	prevTick := time.Now().Add(-time.Second)
	previous := Load{
		Tick: prevTick,
		Raw: []ResourceUsage{
			{UserTime: 0},
			{UserTime: 0},
		},
	}

	l, _ := newBoundListenerForLoadTest(t, []ResourceUsage{
		{UserTime: 500 * time.Millisecond},
		{UserTime: 250 * time.Millisecond},
	})

	snap, err := l.RequestLoad(previous)
	if err != nil {
		t.Fatalf("RequestLoad: %v", err)
	}

	var sum float64
	for _, w := range snap.Workers {
		sum += w
	}
	mean := sum / float64(len(snap.Workers))

	const tolerance = 1e-6
	diff := mean - snap.Global
	if diff < -tolerance || diff > tolerance {
		t.Errorf("Global = %v, mean(Workers) = %v, want equal within tolerance", snap.Global, mean)
	}
}

func TestRequestLoadPropagatesWorkerFailure(t *testing.T) {
	l, _ := newBoundListenerForLoadTest(t, []ResourceUsage{{}})
	r := l.reactor
	handlers, _ := r.Handlers(l.transportKindKey)
	handlers[0].(*fakeTransport).loadResult = UsageResult{Err: errNotBound}

	if _, err := l.RequestLoad(Load{}); err == nil {
		t.Error("expected error when a worker's load future fails")
	}
}

func TestRequestLoadUnbound(t *testing.T) {
	l := &Listener{}
	if _, err := l.RequestLoad(Load{}); err != errNotBound {
		t.Errorf("err = %v, want errNotBound", err)
	}
}
