package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sleepsheep/sheep/internal/logging"
)

func TestNew_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "sheep.log")
	log, err := logging.New(logging.Config{Level: "debug", File: path, MaxSizeMB: 1, MaxFiles: 1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Named("account").Infof("sheep evolved to %s", "fluffy")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "sheep evolved to fluffy") {
		t.Errorf("log file missing entry: %s", data)
	}
	if !strings.Contains(string(data), `"logger":"account"`) {
		t.Errorf("log entry missing component name: %s", data)
	}
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sheep.log")
	log, err := logging.New(logging.Config{Level: "warn", File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "hidden") {
		t.Error("info entry should be filtered at warn level")
	}
	if !strings.Contains(string(data), "shown") {
		t.Error("warn entry should be written")
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := logging.New(logging.Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestNop(t *testing.T) {
	var l logging.Logger = logging.Nop()
	l.Errorf("discarded %d", 1)
}
