// Command acceptord is a demo wiring of netcore around the echo
// reference Transport. It takes exactly one positional argument, a
// path to a TOML config file; there is no flag parsing, per the
// explicit choice to keep CLI glue out of this core's scope.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/walkon/netcore"
	"github.com/walkon/netcore/internal/config"
	"github.com/walkon/netcore/internal/logging"
	"github.com/walkon/netcore/transport/echo"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <config.toml>\n", os.Args[0])
		os.Exit(2)
	}

	if err := run(os.Args[1]); err != nil {
		logging.Errorf("acceptord: fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.FileConfig{Path: cfg.LogFile}, config.ParseLevel(cfg.LogLevel))

	watcher, err := config.NewWatcher(configPath)
	if err != nil {
		return fmt.Errorf("acceptord: start config watcher: %w", err)
	}
	defer watcher.Close()

	var flags netcore.Flags
	if cfg.ReuseAddr {
		flags |= netcore.ReuseAddr
	}
	if cfg.Linger {
		flags |= netcore.Linger
	}
	if cfg.FastOpen {
		flags |= netcore.FastOpen
	}
	if cfg.NoDelay {
		flags |= netcore.NoDelay
	}
	if cfg.InstallSignalHandler {
		flags |= netcore.InstallSignalHandler
	}

	l := netcore.NewWithAddress(netcore.Address{Host: cfg.Host, Port: cfg.Port})
	if err := l.Init(cfg.WorkerCount, netcore.Options{Flags: flags}, cfg.Backlog); err != nil {
		return err
	}
	l.SetHandler(echo.Handler{})

	if err := l.Bind(); err != nil {
		return err
	}
	logging.Infof("acceptord: listening", zap.Int("port", l.GetPort()))

	if !cfg.InstallSignalHandler {
		// Without the core's own signal wiring, acceptord still needs
		// to shut down cleanly on SIGINT/SIGTERM, so it installs a
		// minimal handler of its own rather than leaving the process
		// unkillable except by SIGKILL.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logging.LogErr(l.Shutdown())
		}()
	}

	return l.Run(nil)
}
