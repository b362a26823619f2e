package netcore

import "sync"

// Peer is the opaque accepted-connection bundle handed off to a
// Transport. Ownership passes entirely to the selected transport once
// HandleNewPeer returns.
type Peer struct {
	Address Address
	FD      int
}

// peerPool recycles Peer values across accepts, the way capitan pools
// its Event values for its hot emit path; the accept loop is the only
// place under memory pressure in this core, so it is the only place
// worth pooling.
var peerPool = sync.Pool{New: func() any { return new(Peer) }}

func newPeer(addr Address, fd int) *Peer {
	p := peerPool.Get().(*Peer)
	p.Address = addr
	p.FD = fd
	return p
}

// ReleasePeer returns p to the pool. Transports that no longer need the
// Peer value (e.g. after copying what they need into their own
// connection state) may call this to avoid an allocation on the next
// accept; it is never required for correctness.
func ReleasePeer(p *Peer) {
	p.Address = Address{}
	p.FD = -1
	peerPool.Put(p)
}
