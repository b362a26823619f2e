//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

package netcore

import (
	"net"
	"sync/atomic"
	"testing"
	"time"
)

func TestListenerBindRequiresHandler(t *testing.T) {
	l := New()
	if err := l.Bind(Address{Host: "127.0.0.1", Port: 0}); err != errNoHandler {
		t.Errorf("Bind() err = %v, want errNoHandler", err)
	}
}

func TestListenerDispatchByFDModN(t *testing.T) {
	r := &Reactor{}
	if err := r.Init(4); err != nil {
		t.Fatalf("Init: %v", err)
	}
	h := &fakeHandler{}
	key, err := r.AddHandler(h)
	if err != nil {
		t.Fatalf("AddHandler: %v", err)
	}

	l := &Listener{
		bound:            true,
		reactor:          r,
		transportKindKey: key,
	}

	for fd := 10; fd < 18; fd++ {
		if err := l.dispatchPeer(&Peer{FD: fd}); err != nil {
			t.Fatalf("dispatchPeer(fd=%d): %v", fd, err)
		}
	}

	for i, inst := range h.instances {
		want := 0
		for fd := 10; fd < 18; fd++ {
			if fd%4 == i {
				want++
			}
		}
		if int(inst.handled) != want {
			t.Errorf("worker %d handled %d peers, want %d", i, inst.handled, want)
		}
	}
}

func TestListenerBindPortZeroThenRunThreadedThenShutdown(t *testing.T) {
	l := New()
	if err := l.Init(2, Options{}, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	h := &fakeHandler{}
	l.SetHandler(h)

	if err := l.Bind(Address{Host: "127.0.0.1", Port: 0}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if !l.IsBound() {
		t.Fatal("IsBound() = false after successful Bind")
	}

	port := l.GetPort()
	if port <= 0 {
		t.Fatalf("GetPort() = %d, want > 0", port)
	}
	if CurrentListenFD() < 0 {
		t.Errorf("CurrentListenFD() = %d after Bind, want a valid fd", CurrentListenFD())
	}

	ready := make(chan struct{})
	join := l.RunThreaded(ready)

	select {
	case <-ready:
	case <-time.After(time.Second):
		t.Fatal("Run did not signal ready within 1s")
	}

	conn, err := net.Dial("tcp", (&Address{Host: "127.0.0.1", Port: uint16(port)}).String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()

	sumHandled := func() int32 {
		var total int32
		for _, inst := range h.instances {
			total += atomic.LoadInt32(&inst.handled)
		}
		return total
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) && sumHandled() == 0 {
		time.Sleep(time.Millisecond)
	}
	if sumHandled() == 0 {
		t.Error("no peer was dispatched to any worker transport")
	}

	if err := l.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-runErrCh(join):
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return within 1s of Shutdown")
	}

	if l.GetPort() != 0 {
		t.Errorf("GetPort() after shutdown = %d, want 0", l.GetPort())
	}
	if CurrentListenFD() != -1 {
		t.Errorf("CurrentListenFD() after shutdown = %d, want -1", CurrentListenFD())
	}
}

// runErrCh adapts RunThreaded's blocking join function to a channel so
// the test can select against it with a timeout.
func runErrCh(join func() error) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- join() }()
	return ch
}

func TestListenerBindFailsWithoutReuseAddrOnBusyPort(t *testing.T) {
	first := New()
	if err := first.Init(1, Options{}, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	first.SetHandler(&fakeHandler{})
	if err := first.Bind(Address{Host: "127.0.0.1", Port: 0}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer first.Shutdown()

	port := first.GetPort()

	second := New()
	if err := second.Init(1, Options{}, 0); err != nil {
		t.Fatalf("Init: %v", err)
	}
	second.SetHandler(&fakeHandler{})
	err := second.Bind(Address{Host: "127.0.0.1", Port: uint16(port)})
	if err == nil {
		t.Fatal("expected Bind to fail on an already-bound port without ReuseAddr")
	}
	if second.IsBound() {
		t.Error("IsBound() = true after a failed Bind")
	}
}
