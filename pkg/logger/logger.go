// Package logger builds the process-wide zerolog logger.
//
// Call Init once at startup. Get is safe before Init and returns a JSON
// logger on stderr, which is what startup failures are reported through.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the logger is built.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Anything else is info.
	Level string
	// Pretty switches to zerolog's console writer for local development.
	Pretty bool
	// Output defaults to os.Stdout.
	Output io.Writer
	// Service and Version are attached to every entry when set.
	Service string
	Version string
}

var (
	mu       sync.RWMutex
	global   zerolog.Logger
	hasInit  bool
	initOnce sync.Once
)

// Init builds the process logger from opts and sets the global level. Calls
// after the first return the logger built by the first.
func Init(opts Options) zerolog.Logger {
	initOnce.Do(func() {
		l := New(opts)
		zerolog.SetGlobalLevel(ParseLevel(opts.Level))

		mu.Lock()
		global, hasInit = l, true
		mu.Unlock()
	})
	return Get()
}

// Get returns the logger built by Init, or a bootstrap logger on stderr.
func Get() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !hasInit {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return global
}

// New builds a logger without touching the process logger. Tests and tools
// use it directly.
func New(opts Options) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.Kitchen}
	}

	fields := zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp()
	if opts.Service != "" {
		fields = fields.Str("service", opts.Service)
	}
	if opts.Version != "" {
		fields = fields.Str("version", opts.Version)
	}
	return fields.Caller().Logger()
}

// ParseLevel maps a level name to a zerolog.Level. Unknown names are info.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
