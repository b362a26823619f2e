package netpoll

import (
	"errors"
	"sync"
)

// ErrAlreadyBound is returned by ShutdownNotifier.Bind when called twice.
var ErrAlreadyBound = errors.New("netpoll: shutdown notifier already bound")

// ShutdownNotifier is an in-process, poll-registerable wakeup primitive.
// Notify is idempotent and safe to call from a signal-handling goroutine:
// the underlying descriptor is either an eventfd (Linux) or a self-pipe
// (BSD/Darwin), which sidesteps the EINTR special case a raw
// atomic-sentinel implementation would otherwise need.
type ShutdownNotifier struct {
	mu       sync.Mutex
	readFD   int
	writeFD  int
	tag      Tag
	poller   Poller
	bound    bool
	notified bool
}

// Bind registers the notifier with p under tag. Bind may only be called
// once; calling it again returns ErrAlreadyBound.
func (n *ShutdownNotifier) Bind(p Poller, tag Tag) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bound {
		return ErrAlreadyBound
	}
	readFD, writeFD, err := openNotifyFD()
	if err != nil {
		return err
	}
	if err := p.Add(readFD, Read, tag); err != nil {
		return err
	}
	n.readFD = readFD
	n.writeFD = writeFD
	n.tag = tag
	n.poller = p
	n.bound = true
	if n.notified {
		_ = writeNotify(n.writeFD)
	}
	return nil
}

// IsBound reports whether Bind has succeeded.
func (n *ShutdownNotifier) IsBound() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.bound
}

// Tag returns the tag this notifier was bound with. Only meaningful
// after IsBound reports true.
func (n *ShutdownNotifier) Tag() Tag {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tag
}

// Notify wakes the next (or a currently blocked) Poll call. It is safe
// to call multiple times and safe to call before Bind -- the wakeup is
// remembered and delivered as soon as Bind completes, which matters for
// a signal-handler racing process startup.
func (n *ShutdownNotifier) Notify() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notified = true
	if !n.bound {
		return nil
	}
	return writeNotify(n.writeFD)
}

// Drain clears the pending wakeup after Poll has reported it, so a
// level-triggered backend does not spin.
func (n *ShutdownNotifier) Drain() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.bound {
		drainNotify(n.readFD)
	}
}

// Close releases the underlying descriptor(s). Safe to call on an
// unbound notifier.
func (n *ShutdownNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.bound {
		return nil
	}
	_ = n.poller.Remove(n.readFD)
	err := closeNotifyFDs(n.readFD, n.writeFD)
	n.bound = false
	return err
}
