package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupLoggerJSONWritesToConsoleAndFile(t *testing.T) {
	t.Cleanup(CloseLogger)

	var console bytes.Buffer
	logPath := filepath.Join(t.TempDir(), "imagededup.log")
	if err := SetupLogger(Options{Level: "debug", Format: "json", LogFile: logPath, Console: &console}); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}

	LogImageProcessed("/photos/a.jpg", false, "decode failed")
	CloseLogger()

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(console.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("console line is not JSON: %q", line)
		}
		if entry["msg"] == "image skipped" {
			found = true
			if entry["path"] != "/photos/a.jpg" || entry["reason"] != "decode failed" {
				t.Fatalf("unexpected attrs: %v", entry)
			}
		}
	}
	if !found {
		t.Fatalf("expected skip entry in console output: %s", console.String())
	}

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "image skipped") {
		t.Fatalf("log file missing entry: %s", data)
	}
}

func TestSetupLoggerRejectsUnknownFormat(t *testing.T) {
	t.Cleanup(CloseLogger)
	if err := SetupLogger(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestLevelFiltersDebug(t *testing.T) {
	t.Cleanup(CloseLogger)

	var console bytes.Buffer
	if err := SetupLogger(Options{Level: "info", Console: &console}); err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	DebugLog("hidden %d", 1)
	LogInfo("shown %d", 2)

	out := console.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug message leaked at info level: %s", out)
	}
	if !strings.Contains(out, "shown 2") {
		t.Fatalf("info message missing: %s", out)
	}
}
