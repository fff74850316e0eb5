package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"log/slog"

	"github.com/socialpulse/socialpulse/internal/config"
)

func TestNewConfiguresSupportedFormats(t *testing.T) {
	tests := []struct {
		name   string
		format string
		level  slog.Level
	}{
		{name: "json", format: "json", level: slog.LevelWarn},
		{name: "text", format: "text", level: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(config.LoggingConfig{Level: tt.level, Format: tt.format})
			if err != nil {
				t.Fatalf("New returned error: %v", err)
			}

			levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
			ctx := context.Background()
			for _, lvl := range levels {
				enabled := logger.Enabled(ctx, lvl)
				expected := lvl >= tt.level
				if enabled != expected {
					t.Fatalf("logger level %v enabled(%v)=%t, want %t", tt.level, lvl, enabled, expected)
				}
			}
		})
	}
}

func TestNewWithUnsupportedFormat(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: slog.LevelInfo, Format: "pretty"})
	if err == nil {
		t.Fatal("expected error for unsupported format, got nil")
	}

	if !strings.Contains(err.Error(), "unsupported log format") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewWithWriterTagsService(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithWriter(config.LoggingConfig{Level: slog.LevelInfo, Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter returned error: %v", err)
	}

	logger.Info("import finished", "network", "twitter")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if record["service"] != "socialpulse" {
		t.Errorf("service = %v, want socialpulse", record["service"])
	}
	if record["network"] != "twitter" {
		t.Errorf("network = %v, want twitter", record["network"])
	}
}

func TestDiscardIsSilent(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Fatal("discard logger should not enable error level")
	}
}
