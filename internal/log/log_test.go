// ABOUTME: Tests for the leveled logging package
// ABOUTME: Validates level filtering, level parsing, and text/json rendering

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"
)

// capture redirects output for the duration of a test. Tests using it must not run in parallel.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	savedLevel := GetLevel()
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetFormat(FormatText)
		SetLevel(savedLevel)
	})
	return &buf
}

func TestSetLevel(t *testing.T) {
	savedLevel := GetLevel()
	defer SetLevel(savedLevel)

	SetLevel(LevelDebug)
	if GetLevel() != LevelDebug {
		t.Errorf("expected LevelDebug, got %v", GetLevel())
	}

	SetLevel(LevelError)
	if GetLevel() != LevelError {
		t.Errorf("expected LevelError, got %v", GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"warn", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestDebugSuppressedAtInfoLevel(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelInfo)

	Debug("this should be suppressed: %s", "test")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestTextFormat(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelDebug)

	Debug("classified %s", "order_status")
	Warn("rag unavailable")

	got := buf.String()
	if !strings.Contains(got, "[DEBUG] classified order_status\n") {
		t.Errorf("missing debug line in %q", got)
	}
	if !strings.Contains(got, "[WARN] rag unavailable\n") {
		t.Errorf("missing warn line in %q", got)
	}
}

func TestErrorAlwaysEmitted(t *testing.T) {
	buf := capture(t)
	SetLevel(LevelError + 4)

	Error("store down: %v", "timeout")
	if !strings.Contains(buf.String(), "store down: timeout") {
		t.Errorf("expected error line, got %q", buf.String())
	}
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t)
	SetFormat(FormatJSON)
	SetLevel(LevelInfo)

	Info("ingested %d chunks", 12)

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("output is not a json line: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "ingested 12 chunks" {
		t.Errorf("msg = %v; want %q", rec["msg"], "ingested 12 chunks")
	}
	if rec["level"] != "INFO" {
		t.Errorf("level = %v; want INFO", rec["level"])
	}
}
