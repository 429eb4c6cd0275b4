package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		wantLevel zerolog.Level
	}{
		{"default level", "", zerolog.InfoLevel},
		{"debug level", "debug", zerolog.DebugLevel},
		{"warn level", "warn", zerolog.WarnLevel},
		{"error level", "error", zerolog.ErrorLevel},
		{"case insensitive", "DEBUG", zerolog.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Init(tt.level, &bytes.Buffer{})
			if zerolog.GlobalLevel() != tt.wantLevel {
				t.Errorf("expected level %v, got %v", tt.wantLevel, zerolog.GlobalLevel())
			}
		})
	}
	Init("info", nil)
}

func TestPrintfHelpersCarryInstance(t *testing.T) {
	var buf bytes.Buffer
	Init("info", &buf)
	defer Init("info", nil)

	Warn("secondary %s failed", "smtp")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v (%q)", err, buf.String())
	}
	if line["message"] != "secondary smtp failed" {
		t.Fatalf("unexpected message: %v", line["message"])
	}
	if line["level"] != "warn" {
		t.Fatalf("unexpected level: %v", line["level"])
	}
	if line["instance"] != instanceID || instanceID == "" {
		t.Fatalf("missing instance id: %v", line["instance"])
	}
}
