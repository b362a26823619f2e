package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/walkon/netcore/internal/logging"
)

// Watcher hot-reloads the log level out of a config file while it
// changes on disk, leaving every bind-time field (worker_count,
// backlog, options) untouched for the lifetime of the process --
// those are fixed once Listener.Init has run.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewWatcher starts watching path for writes. Call Close to stop.
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: new watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		fw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{path: path, watcher: fw, done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				logging.Warnf("config: reload failed", zap.Error(err))
				continue
			}
			logging.SetLevel(ParseLevel(cfg.LogLevel))
			logging.Infof("config: log level reloaded", zap.String("level", cfg.LogLevel))
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Warnf("config: watcher error", zap.Error(err))
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher goroutine and releases the underlying
// inotify/kqueue handle.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
