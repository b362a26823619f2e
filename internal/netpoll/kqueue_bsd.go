//go:build freebsd || dragonfly || netbsd || openbsd || darwin
// +build freebsd dragonfly netbsd openbsd darwin

package netpoll

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// kqueuePoller backs Poller on the BSDs and Darwin with kqueue(2).
//
// kqueue's Kevent_t.Udata field is typed differently across BSD
// variants, so rather than overlay a tag onto it (as the epoll backend
// does with EpollEvent.Fd/Pad) this backend keeps its own fd->tag table,
// the same approach the kqueuePoller in the asyncio poller backends
// this package is grounded on takes.
type kqueuePoller struct {
	kq   int
	mu   sync.RWMutex
	tags map[int]Tag
}

func newPoller() (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, fmt.Errorf("netpoll: kqueue: %w", err)
	}
	return &kqueuePoller{kq: kq, tags: make(map[int]Tag)}, nil
}

func (p *kqueuePoller) Add(fd int, interest Interest, tag Tag) error {
	var changes []unix.Kevent_t
	if interest&Read != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD | unix.EV_ENABLE})
	}
	if interest&Write != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_ENABLE})
	}
	if len(changes) == 0 {
		return fmt.Errorf("netpoll: add fd=%d: no interest requested", fd)
	}
	if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
		return fmt.Errorf("netpoll: kevent add fd=%d: %w", fd, err)
	}
	p.mu.Lock()
	p.tags[fd] = tag
	p.mu.Unlock()
	return nil
}

func (p *kqueuePoller) Remove(fd int) error {
	changes := []unix.Kevent_t{
		{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE},
		{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE},
	}
	_, _ = unix.Kevent(p.kq, changes, nil, nil)
	p.mu.Lock()
	delete(p.tags, fd)
	p.mu.Unlock()
	return nil
}

func (p *kqueuePoller) Poll(out []Event, max int, timeout time.Duration) (int, error) {
	if max > len(out) {
		max = len(out)
	}
	raw := make([]unix.Kevent_t, max)

	var ts *unix.Timespec
	if timeout >= 0 {
		spec := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &spec
	}

	n, err := unix.Kevent(p.kq, nil, raw, ts)
	if err != nil {
		if err == unix.EINTR {
			return -1, ErrInterrupted
		}
		return -1, fmt.Errorf("netpoll: kevent wait: %w", err)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	filled := 0
	for i := 0; i < n; i++ {
		fd := int(raw[i].Ident)
		tag, ok := p.tags[fd]
		if !ok {
			continue
		}
		var r Readiness
		switch raw[i].Filter {
		case unix.EVFILT_READ:
			r = Read
		case unix.EVFILT_WRITE:
			r = Write
		}
		if raw[i].Flags&unix.EV_ERROR != 0 {
			r |= Read
		}
		out[filled] = Event{Tag: tag, Readiness: r}
		filled++
	}
	return filled, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}
