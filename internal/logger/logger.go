package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	// globalLogger holds the singleton logger instance.
	globalLogger *Logger
	once         sync.Once
)

type options struct {
	format string
}

// Option tunes the logger built by the first Get call.
type Option func(*options)

// WithFormat selects the console (default) or json encoder.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

// Get returns a singleton logger configured with the provided level.
// The first call initializes the logger; subsequent calls ignore the level
// and options and return the already initialized instance.
func Get(level string, opts ...Option) *Logger {
	once.Do(func() {
		o := options{format: ConsoleFormat}
		for _, opt := range opts {
			opt(&o)
		}
		globalLogger = newZapLogger(level, o.format)
	})
	return globalLogger
}
