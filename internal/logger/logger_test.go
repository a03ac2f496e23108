package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestGetInitializesOnce(t *testing.T) {
	mu.Lock()
	defaultLogger = nil
	mu.Unlock()

	l1 := Get()
	if l1 == nil {
		t.Fatal("Get() should return a logger")
	}
	if l2 := Get(); l1 != l2 {
		t.Error("Get() should return the same logger instance")
	}
}

func TestInitWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", false)

	Info("hidden message")
	Warn("visible message")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "visible message") {
		t.Error("warn message should be logged")
	}
}

func TestContextLoggingIncludesRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", true)

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")
	InfoContext(ctx, "handled", "status", 200)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON log line, got %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-42" {
		t.Errorf("expected request_id req-42, got %v", entry["request_id"])
	}
	if entry["msg"] != "handled" {
		t.Errorf("expected msg handled, got %v", entry["msg"])
	}
}

func TestRequestID_EmptyContext(t *testing.T) {
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", false)

	WithComponent("cache").Info("swept")
	if !strings.Contains(buf.String(), "component=cache") {
		t.Errorf("expected component attribute, got %q", buf.String())
	}
}
