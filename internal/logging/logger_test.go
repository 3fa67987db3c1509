package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"DEBUG", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_JSONIncludesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, Options{Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	NewComponentLogger(logger, "assembler").Debug("adding entry", String(FieldPath, "Scripts/Foo.txt"))

	out := buf.String()
	if !strings.Contains(out, `"component":"assembler"`) {
		t.Errorf("expected component attribute, got %s", out)
	}
	if !strings.Contains(out, `"path":"Scripts/Foo.txt"`) {
		t.Errorf("expected path attribute, got %s", out)
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewComponentLogger_NilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "x")
	// Must not panic and must discard.
	logger.Info("dropped")
}
