// Package logging wires the global zerolog logger to the console and to a
// rotating attendance.log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the log file written inside the log directory.
const FileName = "attendance.log"

// Options configures the logger sinks.
type Options struct {
	// Verbose forces debug level and wins over Level.
	Verbose bool
	// Level is a zerolog level name; empty means info.
	Level string
	// Dir holds the rotating log file; empty disables the file sink.
	Dir string
	// Console receives human-readable output; nil means os.Stderr.
	Console io.Writer
}

// Init configures the global logger from LOGS_FOLDER and LOG_LEVEL. It runs
// before config.Load, so .env files are read here as well. A log directory
// that cannot be written leaves only the console sink and logs a warning.
func Init(verbose bool) {
	if exe, err := os.Executable(); err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exe), ".env"))
	}
	_ = godotenv.Load()

	dir := os.Getenv("LOGS_FOLDER")
	if dir == "" {
		dir = "logs"
	}
	logger, err := New(Options{Verbose: verbose, Level: os.Getenv("LOG_LEVEL"), Dir: dir})
	log.Logger = logger
	if err != nil {
		log.Warn().Err(err).Msg("File logging disabled")
	}
}

// New builds a logger and sets the global level. On a file sink error the
// returned logger still writes to the console.
func New(opts Options) (zerolog.Logger, error) {
	zerolog.SetGlobalLevel(levelOf(opts))

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	consoleWriter := zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal(console),
	}

	var sinkErr error
	writers := []io.Writer{consoleWriter}
	if opts.Dir != "" {
		if err := ensureWritable(opts.Dir); err != nil {
			sinkErr = err
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   filepath.Join(opts.Dir, FileName),
				MaxSize:    16, // megabytes
				MaxBackups: 32,
				MaxAge:     365, // days
				Compress:   true,
			})
		}
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
	return logger, sinkErr
}

func levelOf(opts Options) zerolog.Level {
	if opts.Verbose {
		return zerolog.DebugLevel
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level))); err == nil && lvl != zerolog.NoLevel {
		return lvl
	}
	return zerolog.InfoLevel
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func ensureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".write-test-*")
	if err != nil {
		return fmt.Errorf("log directory %q is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}
