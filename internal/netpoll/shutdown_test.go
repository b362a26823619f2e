//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

package netpoll

import (
	"testing"
	"time"
)

func TestShutdownNotifierNotifyBeforeBindIsDelivered(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var n ShutdownNotifier
	if err := n.Notify(); err != nil {
		t.Fatalf("Notify before Bind: %v", err)
	}

	if err := n.Bind(p, Tag(99)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer n.Close()

	events := make([]Event, DefaultBatch)
	count, err := p.Poll(events, DefaultBatch, time.Second)
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if count != 1 {
		t.Fatalf("Poll returned %d events, want 1", count)
	}
	if events[0].Tag != Tag(99) {
		t.Errorf("Tag = %d, want 99", events[0].Tag)
	}
}

func TestShutdownNotifierBindTwiceFails(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var n ShutdownNotifier
	if err := n.Bind(p, Tag(1)); err != nil {
		t.Fatalf("first Bind: %v", err)
	}
	defer n.Close()

	if err := n.Bind(p, Tag(2)); err != ErrAlreadyBound {
		t.Errorf("second Bind err = %v, want ErrAlreadyBound", err)
	}
}

func TestShutdownNotifierDrainClearsReadiness(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer p.Close()

	var n ShutdownNotifier
	if err := n.Bind(p, Tag(1)); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	defer n.Close()

	if err := n.Notify(); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	events := make([]Event, DefaultBatch)
	if _, err := p.Poll(events, DefaultBatch, time.Second); err != nil {
		t.Fatalf("Poll: %v", err)
	}
	n.Drain()

	count, err := p.Poll(events, DefaultBatch, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("Poll after Drain: %v", err)
	}
	if count != 0 {
		t.Errorf("Poll returned %d events after Drain, want 0", count)
	}
}
