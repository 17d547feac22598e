package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_DefaultsToInfoLevel(t *testing.T) {
	log := New()
	if log.GetLevel() != slog.LevelInfo {
		t.Errorf("expected info level, got %v", log.GetLevel())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{" info ", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"Warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNextLevel_Cycles(t *testing.T) {
	level := slog.LevelDebug
	want := []slog.Level{slog.LevelInfo, slog.LevelWarn, slog.LevelError, slog.LevelDebug}
	for _, w := range want {
		level = NextLevel(level)
		if level != w {
			t.Fatalf("expected %v, got %v", w, level)
		}
	}
}

func TestSlogLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown", "event_id", "ev-1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "event_id=ev-1") {
		t.Errorf("expected warn record with field, got %q", out)
	}

	log.SetLevel(slog.LevelDebug)
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Error("expected debug record after SetLevel")
	}
}

func TestSlogLogger_WithSharesState(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithWriter(&buf, slog.LevelInfo)
	child := parent.With("round", 2)

	child.Info("batch applied")
	if !strings.Contains(buf.String(), "round=2") {
		t.Errorf("expected child field in output, got %q", buf.String())
	}

	parent.SetLevel(slog.LevelError)
	if child.GetLevel() != slog.LevelError {
		t.Error("child should follow parent level")
	}

	parent.EnableHTTPLogging()
	if !child.IsHTTPLoggingEnabled() {
		t.Error("child should follow parent HTTP logging switch")
	}
	child.DisableHTTPLogging()
	if parent.IsHTTPLoggingEnabled() {
		t.Error("parent should follow child HTTP logging switch")
	}
}

func TestSlogLogger_ImplementsInterface(t *testing.T) {
	var _ Logger = (*SlogLogger)(nil)
}
