// Package log provides a global logger for zerolog.
package log

import (
	"context"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Writer is where logs are written.
var Writer *MultiWriter

var logger atomic.Pointer[zerolog.Logger]

func init() {
	Writer = NewMultiWriter()
	Writer.Add(os.Stderr)

	l := zerolog.New(Writer).With().Timestamp().Logger()
	SetLogger(&l)
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Logger returns the global logger.
func Logger() *zerolog.Logger {
	return logger.Load()
}

// SetLogger sets the global logger. It is also the default context logger.
func SetLogger(l *zerolog.Logger) {
	logger.Store(l)
	zerolog.DefaultContextLogger = l
}

// GetLevel returns the minimum global log level.
func GetLevel() zerolog.Level {
	return zerolog.GlobalLevel()
}

// SetLevel sets the minimum global log level.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// SetLevelString parses level and sets it as the minimum global log level.
// An empty string leaves the level unchanged.
func SetLevelString(level string) error {
	if level == "" {
		return nil
	}
	l, err := zerolog.ParseLevel(level)
	if err != nil {
		return err
	}
	SetLevel(l)
	return nil
}

// SetDebugMode switches the global logger to human readable console output
// at debug level.
func SetDebugMode() {
	l := Logger().Output(zerolog.ConsoleWriter{
		Out:        consoleOut(),
		TimeFormat: time.Kitchen,
	})
	SetLogger(&l)
	SetLevel(zerolog.DebugLevel)
}

func consoleOut() io.Writer {
	return Writer
}

// With creates a child logger with the field added to its context.
func With() zerolog.Context {
	return Logger().With()
}

// Debug starts a new message with debug level.
//
// You must call Msg on the returned event in order to send the event.
func Debug(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Debug()
}

// Info starts a new message with info level.
//
// You must call Msg on the returned event in order to send the event.
func Info(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Info()
}

// Warn starts a new message with warn level.
//
// You must call Msg on the returned event in order to send the event.
func Warn(ctx context.Context) *zerolog.Event {
	return contextLogger(ctx).Warn()
}

// Error starts a new message with error level.
//
// You must call Msg on the returned event in order to send the event.
func Error() *zerolog.Event {
	return Logger().Error()
}

func contextLogger(ctx context.Context) *zerolog.Logger {
	global := Logger()
	if global.GetLevel() == zerolog.Disabled || ctx == nil {
		return global
	}
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled { // no logger associated with context
		return global
	}
	return l
}

// WithContext returns a context that has an associated logger and extra fields set via update
func WithContext(ctx context.Context, update func(c zerolog.Context) zerolog.Context) context.Context {
	l := contextLogger(ctx).With().Logger()
	l.UpdateContext(update)
	return l.WithContext(ctx)
}

// Ctx returns the Logger associated with the ctx. If no logger
// is associated, the global logger is returned.
func Ctx(ctx context.Context) *zerolog.Logger {
	return contextLogger(ctx)
}

// StdLogWrapper can be used to wrap logs originating from the std library
// logger, such as the ErrorLog of an http.Server.
type StdLogWrapper struct {
	*zerolog.Logger
}

func (l *StdLogWrapper) Write(p []byte) (n int, err error) {
	n = len(p)
	if n > 0 && p[n-1] == '\n' {
		// Trim CR added by stdlog.
		p = p[0 : n-1]
	}
	l.Error().Msg(string(p))
	return n, nil
}
