// Package logging wraps go.uber.org/zap the way gnet's internal/logging
// package wraps it: a single package-level logger, an Init to swap it
// for something that writes to a rotated file, and thin Errorf/Warnf/
// Infof/Debugf/LogErr helpers so call sites log through the package
// logger without holding a *zap.Logger of their own.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu     sync.RWMutex
	level  = zap.NewAtomicLevelAt(zap.InfoLevel)
	logger = mustBuildConsole(level)
)

func mustBuildConsole(lvl zap.AtomicLevel) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), lvl)
	return zap.New(core, zap.AddCaller())
}

// FileConfig points Init at a rotated log file, mirroring the options a
// gnet deployment would pass to lumberjack.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Init replaces the package logger with one that writes JSON records to
// a lumberjack-rotated file in addition to stderr; with an empty
// cfg.Path it logs to stderr only. Safe to call more than once (e.g.
// after a config hot-reload).
func Init(cfg FileConfig, lvl zapcore.Level) {
	mu.Lock()
	defer mu.Unlock()

	level.SetLevel(lvl)

	if cfg.Path == "" {
		logger = mustBuildConsole(level)
		return
	}

	rotator := &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	jsonCfg := zap.NewProductionEncoderConfig()
	jsonCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), zapcore.AddSync(rotator), level)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(os.Stderr), level)

	logger = zap.New(zapcore.NewTee(fileCore, consoleCore), zap.AddCaller())
}

// SetLevel adjusts the current logger's level without rebuilding cores,
// used by the config hot-reload watcher.
func SetLevel(lvl zapcore.Level) {
	level.SetLevel(lvl)
}

// CurrentLevel reports the active logging level, mostly useful for
// asserting a hot-reload took effect.
func CurrentLevel() zapcore.Level {
	return level.Level()
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debugf(msg string, fields ...zap.Field) { current().Debug(msg, fields...) }
func Infof(msg string, fields ...zap.Field)  { current().Info(msg, fields...) }
func Warnf(msg string, fields ...zap.Field)  { current().Warn(msg, fields...) }
func Errorf(msg string, fields ...zap.Field) { current().Error(msg, fields...) }

// LogErr logs err at Error level if non-nil, mirroring gnet's
// logging.LogErr(el.poller.Trigger(...)) call sites that don't want an
// if-err-nil guard at every call site.
func LogErr(err error) {
	if err != nil {
		current().Error("unhandled error", zap.Error(err))
	}
}

// Sync flushes any buffered log entries; call before process exit.
func Sync() error {
	return current().Sync()
}
