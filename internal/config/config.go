// Package config loads the TOML file that drives cmd/acceptord,
// mirroring gnet's example-configuration idiom.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
)

// Config is the on-disk shape of an acceptord deployment. Fields map
// 1:1 onto Listener.Init's worker_count/options/backlog arguments plus
// the bind address and logging setup; none of it is re-read after bind
// except LogLevel, which Watcher hot-reloads.
type Config struct {
	Host        string `toml:"host"`
	Port        uint16 `toml:"port"`
	WorkerCount int    `toml:"worker_count"`
	Backlog     int    `toml:"backlog"`

	ReuseAddr            bool `toml:"reuse_addr"`
	Linger               bool `toml:"linger"`
	FastOpen             bool `toml:"fast_open"`
	NoDelay              bool `toml:"no_delay"`
	InstallSignalHandler bool `toml:"install_signal_handler"`

	LogFile  string `toml:"log_file"`
	LogLevel string `toml:"log_level"`
}

// Load parses path into a Config. A missing or non-positive
// worker_count or backlog comes back as 0, which Listener.Init replaces
// with DefaultWorkers() or MaxBacklog; an empty log_level becomes "info".
func Load(path string) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 0 // caller substitutes DefaultWorkers()
	}
	if cfg.Backlog <= 0 {
		cfg.Backlog = 0 // caller substitutes MaxBacklog
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// ParseLevel converts the config's log_level string into a zapcore
// level, defaulting to Info on anything unrecognized rather than
// failing a hot-reload over a typo.
func ParseLevel(raw string) zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(raw)); err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}
