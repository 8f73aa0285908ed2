package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew_WritesConsoleAndFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	var console bytes.Buffer

	logger, err := New(Options{Dir: dir, Console: &console})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info().Int("events", 3).Msg("Badge log loaded")

	if !strings.Contains(console.String(), "Badge log loaded") {
		t.Errorf("console output missing message: %q", console.String())
	}
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), `"events":3`) {
		t.Errorf("log file should hold JSON lines, got %q", data)
	}
}

func TestNew_UnwritableDirKeepsConsole(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	var console bytes.Buffer

	logger, err := New(Options{Dir: filepath.Join(blocker, "logs"), Console: &console})
	if err == nil {
		t.Fatal("expected an error for a log directory below a file")
	}
	logger.Warn().Msg("still logging")
	if !strings.Contains(console.String(), "still logging") {
		t.Errorf("console sink should survive, got %q", console.String())
	}
}

func TestLevelOf(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want zerolog.Level
	}{
		{"default", Options{}, zerolog.InfoLevel},
		{"verbose", Options{Verbose: true, Level: "error"}, zerolog.DebugLevel},
		{"named", Options{Level: "warn"}, zerolog.WarnLevel},
		{"padded", Options{Level: " Error "}, zerolog.ErrorLevel},
		{"unknown", Options{Level: "loud"}, zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := levelOf(tt.opts); got != tt.want {
				t.Errorf("levelOf = %v, want %v", got, tt.want)
			}
		})
	}
}
