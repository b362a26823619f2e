//go:build linux || freebsd || dragonfly || netbsd || openbsd || darwin
// +build linux freebsd dragonfly netbsd openbsd darwin

package netcore

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"github.com/walkon/netcore/internal/logging"
)

// signalMu guards the process-wide signal.Notify registration: multiple
// Listeners requesting InstallSignalHandler in the same process share
// one registration and one delivery goroutine.
var (
	signalMu        sync.Mutex
	signalListeners []*Listener
	signalCh        chan os.Signal
)

// installSignalHandler arranges for SIGINT/SIGTERM to call l.Shutdown.
// Signal delivery happens on an ordinary goroutine, as os/signal always
// does, so none of the async-signal-safety restrictions that would
// apply inside a real OS signal handler apply here. ShutdownNotifier's
// self-pipe still does the work of actually waking a blocked poll
// syscall, since that is the part that does cross into signal-handler
// territory on the OS side.
func installSignalHandler(l *Listener) error {
	signalMu.Lock()
	defer signalMu.Unlock()

	signalListeners = append(signalListeners, l)

	if signalCh != nil {
		return nil
	}
	signalCh = make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-signalCh
		logging.Infof("received shutdown signal", zap.String("signal", sig.String()))

		signalMu.Lock()
		targets := make([]*Listener, len(signalListeners))
		copy(targets, signalListeners)
		signalMu.Unlock()

		for _, target := range targets {
			logging.LogErr(target.Shutdown())
		}
	}()
	return nil
}
