package config

import (
	"os"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/walkon/netcore/internal/logging"
)

func TestWatcherReloadsLogLevel(t *testing.T) {
	path := writeTempConfig(t, `
host = "127.0.0.1"
port = 9000
log_level = "info"
`)

	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	body := `
host = "127.0.0.1"
port = 9000
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if logging.CurrentLevel() == zapcore.DebugLevel {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("log level did not reload to debug within deadline, got %v", logging.CurrentLevel())
}
