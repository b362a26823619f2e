package netcore

import "github.com/walkon/netcore/internal/netpoll"

// ShutdownNotifier is re-exported at the package root since it is a
// top-level component the Listener owns directly; the OS-specific
// wakeup mechanics live in internal/netpoll alongside the Poller they
// register with.
type ShutdownNotifier = netpoll.ShutdownNotifier

// ErrAlreadyBound is returned by ShutdownNotifier.Bind when called twice.
var ErrAlreadyBound = netpoll.ErrAlreadyBound
