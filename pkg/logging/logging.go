// Package logging provides the process-wide zerolog logger.
//
// Values can be provided directly or via environment variables:
//   - GOPOSTER_LOG_LEVEL=debug|info|warn|error
//   - GOPOSTER_LOG_FORMAT=console|json
//   - GOPOSTER_LOG_FILE=<path> (adds a rotated JSON file sink)
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization.
type Options struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
	File   string `yaml:"file"`
}

var (
	mu     sync.RWMutex
	logger *zerolog.Logger
	file   *lj.Logger
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *zerolog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Init configures the global logger. It may be called again to reconfigure.
func Init(opts Options) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var console io.Writer = os.Stderr
	if !strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}

	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}

	out := console
	if strings.TrimSpace(opts.File) != "" {
		file = &lj.Logger{Filename: opts.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		out = zerolog.MultiLevelWriter(console, file)
	}

	l := zerolog.New(out).Level(level).With().Timestamp().Str("app", "goposter").Logger()
	logger = &l
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:  getenv("GOPOSTER_LOG_LEVEL", "info"),
		Format: getenv("GOPOSTER_LOG_FORMAT", "console"),
		File:   os.Getenv("GOPOSTER_LOG_FILE"),
	}
}

// WithComponent returns a child logger tagged with a component name.
func WithComponent(name string) *zerolog.Logger {
	l := L().With().Str("component", name).Logger()
	return &l
}

// Nop returns a disabled logger for callers that want silence.
func Nop() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
