package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		name string
		want slog.Level
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: " warn ", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
	}

	for _, tc := range cases {
		got, err := ParseLevel(tc.name)
		if err != nil {
			t.Fatalf("ParseLevel(%q) failed: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, expected %v", tc.name, got, tc.want)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug("feed_fetch_failed", "error", "boom")
	logger.Warn("storage_slow", "key", "pv_users")

	output := buf.String()
	if strings.Contains(output, "feed_fetch_failed") {
		t.Fatalf("expected debug entry to be filtered, got %q", output)
	}
	if !strings.Contains(output, "storage_slow") || !strings.Contains(output, "key=pv_users") {
		t.Fatalf("expected warn entry, got %q", output)
	}
}
