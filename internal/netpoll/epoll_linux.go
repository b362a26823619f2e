//go:build linux
// +build linux

package netpoll

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// epollPoller backs Poller on Linux with epoll(7), level-triggered.
type epollPoller struct {
	epfd int
	raw  []unix.EpollEvent
}

func newPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("netpoll: epoll_create1: %w", err)
	}
	return &epollPoller{epfd: epfd, raw: make([]unix.EpollEvent, DefaultBatch)}, nil
}

func (p *epollPoller) Add(fd int, interest Interest, tag Tag) error {
	var ev unix.EpollEvent
	ev.Events = epollEventsFor(interest)
	setEpollTag(&ev, tag)
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("netpoll: epoll_ctl add fd=%d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Remove(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return fmt.Errorf("netpoll: epoll_ctl del fd=%d: %w", fd, err)
	}
	return nil
}

func (p *epollPoller) Poll(out []Event, max int, timeout time.Duration) (int, error) {
	if max > len(out) {
		max = len(out)
	}
	if max > len(p.raw) {
		p.raw = make([]unix.EpollEvent, max)
	}
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.raw[:max], ms)
	if err != nil {
		if err == unix.EINTR {
			return -1, ErrInterrupted
		}
		return -1, fmt.Errorf("netpoll: epoll_wait: %w", err)
	}
	for i := 0; i < n; i++ {
		out[i] = Event{
			Tag:       Tag(getEpollTag(&p.raw[i])),
			Readiness: readinessFromEpoll(p.raw[i].Events),
		}
	}
	return n, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}

func epollEventsFor(interest Interest) uint32 {
	var ev uint32
	if interest&Read != 0 {
		ev |= unix.EPOLLIN
	}
	if interest&Write != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func readinessFromEpoll(events uint32) Readiness {
	var r Readiness
	if events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0 {
		r |= Read
	}
	if events&unix.EPOLLOUT != 0 {
		r |= Write
	}
	return r
}

// setEpollTag/getEpollTag overlay the 64-bit opaque "data" union the
// kernel copies back verbatim onto unix.EpollEvent's Fd+Pad fields,
// the same technique used to stash a user pointer in kqueue/epoll event
// data in the asyncio poller backends this package is grounded on.
func setEpollTag(ev *unix.EpollEvent, tag Tag) {
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = uint64(tag)
}

func getEpollTag(ev *unix.EpollEvent) uint64 {
	return *(*uint64)(unsafe.Pointer(&ev.Fd))
}
