package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreLogger(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestInit_WritesToOutput(t *testing.T) {
	restoreLogger(t)
	t.Setenv(LevelEnv, "")

	var buf bytes.Buffer
	Init("debug", &buf)

	log.Debug().Str("photo", "ocean").Msg("Photo selected")

	out := buf.String()
	if !strings.Contains(out, "Photo selected") || !strings.Contains(out, "photo=ocean") {
		t.Errorf("unexpected log output: %q", out)
	}
}

func TestInit_EnvOverridesLevel(t *testing.T) {
	restoreLogger(t)
	t.Setenv(LevelEnv, "error")

	var buf bytes.Buffer
	Init("debug", &buf)

	log.Info().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}
	if zerolog.GlobalLevel() != zerolog.ErrorLevel {
		t.Errorf("expected error level, got %v", zerolog.GlobalLevel())
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "collage.log")

	f, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() failed: %v", err)
	}
	f.WriteString("line\n")
	f.Close()

	f, err = OpenFile(path)
	if err != nil {
		t.Fatalf("second OpenFile() failed: %v", err)
	}
	f.WriteString("line\n")
	f.Close()

	data, _ := os.ReadFile(path)
	if string(data) != "line\nline\n" {
		t.Errorf("expected appended content, got %q", string(data))
	}
}
