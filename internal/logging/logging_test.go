package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWithOutput(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		format  string
		want    logrus.Level
		wantErr bool
	}{
		{"defaults", "", "", logrus.InfoLevel, false},
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"warn json", "warn", "JSON", logrus.WarnLevel, false},
		{"bad level", "loud", "text", 0, true},
		{"bad format", "info", "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewWithOutput(&bytes.Buffer{}, tt.level, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewWithOutput() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if logger.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", logger.GetLevel(), tt.want)
			}
		})
	}
}

func TestJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewWithOutput() error = %v", err)
	}

	logger.WithField("scene", "abc").Info("scene created")
	logger.Debug("hidden")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "scene created" || entry["scene"] != "abc" || entry["level"] != "info" {
		t.Errorf("entry = %v", entry)
	}
}
