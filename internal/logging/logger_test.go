// Reelrec - Movie Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelrec

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if !cfg.Timestamp {
		t.Error("expected default timestamp to be true")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestValidLevel(t *testing.T) {
	t.Parallel()

	if !ValidLevel("Debug") {
		t.Error("expected Debug to be valid")
	}
	if ValidLevel("verbose") {
		t.Error("expected verbose to be invalid")
	}
}

func TestWithRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		requestID string
		want      string
	}{
		{"tagged", "req-123", `"request_id":"req-123"`},
		{"untagged", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			ctx := context.Background()
			if tt.requestID != "" {
				ctx = ContextWithRequestID(ctx, tt.requestID)
			}
			logger := WithRequestID(ctx, NewTestLogger(&buf))
			logger.Warn().Msg("hello")

			out := buf.String()
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("expected %s in output, got: %s", tt.want, out)
			}
			if tt.want == "" && strings.Contains(out, "request_id") {
				t.Errorf("expected no request_id, got: %s", out)
			}
		})
	}

	if RequestIDFromContext(context.Background()) != "" {
		t.Error("expected empty request ID for bare context")
	}
}

func TestSlogHandlerWritesThroughZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(NewTestLogger(&buf)))
	logger.With("service", "retrain").Error("service failed", "restarts", 2)

	out := buf.String()
	for _, want := range []string{`"level":"error"`, `"service":"retrain"`, `"restarts":2`, `"service failed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output, got: %s", want, out)
		}
	}
}
