package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"trace", zerolog.TraceLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_FileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "teamplan.log")

	logger, closer, err := New(Options{Level: "info", FilePath: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Debug().Msg("hidden")
	logger.Info().Str("title", "essay").Msg("plan ready")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1:\n%s", len(lines), data)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["message"] != "plan ready" || entry["title"] != "essay" || entry["level"] != "info" {
		t.Errorf("unexpected entry %v", entry)
	}
}

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Level: "debug", Console: true, ConsoleOut: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	logger.Debug().Msg("scheduling pass complete")
	if !strings.Contains(buf.String(), "scheduling pass complete") {
		t.Errorf("console output missing message: %q", buf.String())
	}
}

func TestNew_NoSinks(t *testing.T) {
	logger, closer, err := New(Options{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if logger.GetLevel() != zerolog.Disabled {
		t.Errorf("level = %v, want disabled", logger.GetLevel())
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}
