package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"ERROR", LevelError},
		{"bogus", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLoggerWritesToFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "powerfetch.log")

	l, err := New(Config{Level: "debug", File: logFile})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer l.Close()

	l.Info("updater", "run finished", F("stations", 42), F("failed", 1))
	l.Error("power", "fetch failed", os.ErrDeadlineExceeded, F("station", "A713"))

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"[INFO] [updater] run finished | stations=42 | failed=1",
		"[ERROR] [power] fetch failed",
		"station=A713",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLoggerLevelFilter(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "test.log")

	l, err := New(Config{Level: "warn", File: logFile})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer l.Close()

	l.Debug("x", "hidden debug")
	l.Info("x", "hidden info")
	l.Warn("x", "visible warn")

	data, _ := os.ReadFile(logFile)
	out := string(data)

	if strings.Contains(out, "hidden") {
		t.Errorf("filtered levels leaked into output:\n%s", out)
	}
	if !strings.Contains(out, "visible warn") {
		t.Errorf("warn line missing:\n%s", out)
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := Nop()
	// Must not panic with no writers configured.
	l.Info("x", "message")
	l.Error("x", "message", os.ErrInvalid)
}
