package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVerbosity(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer SetLevel(Notice)

	logger := New("test")

	SetVerbosity(1)
	logger.Info("info message")
	logger.Warning("warning message")
	if strings.Contains(buf.String(), "info message") {
		t.Fatal("expected info message to be filtered at verbosity 1")
	}
	if !strings.Contains(buf.String(), "warning message") {
		t.Fatalf("expected warning message to be logged; got %q", buf.String())
	}

	buf.Reset()
	SetVerbosity(3)
	logger.Debug("debug message")
	if !strings.Contains(buf.String(), "debug message") {
		t.Fatalf("expected debug message to be logged at verbosity 3; got %q", buf.String())
	}

	buf.Reset()
	SetVerbosity(0)
	logger.Warning("hidden warning")
	logger.Error("error message")
	if strings.Contains(buf.String(), "hidden warning") {
		t.Fatal("expected warning to be filtered at verbosity 0")
	}
	if !strings.Contains(buf.String(), "error message") {
		t.Fatalf("expected error message to be logged; got %q", buf.String())
	}
}

func TestLogFileAppends(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	logFile := filepath.Join(t.TempDir(), "render.log")
	if err := os.WriteFile(logFile, []byte("existing line\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := SetLogFile(logFile); err != nil {
		t.Fatal(err)
	}
	New("test").Notice("file message")
	if err := SetLogFile(""); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "existing line\n") {
		t.Fatalf("expected log file contents to be preserved; got %q", string(data))
	}
	if !strings.Contains(string(data), "file message") {
		t.Fatalf("expected log file to contain the logged message; got %q", string(data))
	}
	if !strings.Contains(buf.String(), "file message") {
		t.Fatalf("expected sink to also receive the message; got %q", buf.String())
	}
}
