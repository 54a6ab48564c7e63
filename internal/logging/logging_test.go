package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesFileAndConsole(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "launcher.log")
	var console bytes.Buffer

	logger, closer, err := Init("debug", path, &console)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	logger.WithField("component", "test").Info("hello")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("log file missing message: %s", data)
	}
	if !strings.Contains(console.String(), "component=test") {
		t.Errorf("console missing field: %s", console.String())
	}
}

func TestInit_ConsoleOnly(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := Init("warn", "console", &console)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer closer.Close()

	logger.Info("suppressed")
	logger.Warn("shown")
	if strings.Contains(console.String(), "suppressed") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(console.String(), "shown") {
		t.Error("warn message missing")
	}
}

func TestInit_BadLevel(t *testing.T) {
	if _, _, err := Init("loud", "", nil); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
