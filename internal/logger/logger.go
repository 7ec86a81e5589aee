// Package logger provides the process logger: a logrus entry that can be
// carried through a context.Context and configured once from CLI settings.
package logger

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// G is a shorthand for GetLogger.
	G = GetLogger
	// L is the global logger entry, used when a context carries none.
	L = logrus.NewEntry(newLogger())
)

type loggerKey struct{}

// WithLogger attaches a logger entry to ctx.
func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger.WithContext(ctx))
}

// GetLogger returns the entry stored in ctx, or L.
func GetLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
		return logger
	}
	return L.WithContext(ctx)
}

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	setLoggerFormat(l, "text")
	return l
}

func setLoggerFormat(logger *logrus.Logger, format string) {
	switch format {
	case "json":
		logger.Formatter = &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		}
	default:
		logger.Formatter = &logrus.TextFormatter{
			DisableTimestamp: true,
		}
	}
}

// Configure sets level, format and output of the global logger in one step.
// A nil out leaves the current output unchanged.
func Configure(level, format string, out io.Writer) error {
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	L.Logger.SetLevel(lvl)
	setLoggerFormat(L.Logger, format)
	if out != nil {
		L.Logger.SetOutput(out)
	}
	return nil
}

// Hold redirects the global logger into memory, e.g. while a full-screen view
// owns the terminal. The returned release restores the previous output and
// writes the held lines to it.
func Hold() (release func() error) {
	var held bytes.Buffer
	prev := L.Logger.Out
	L.Logger.SetOutput(&held)
	return func() error {
		L.Logger.SetOutput(prev)
		_, err := held.WriteTo(prev)
		return err
	}
}

// New returns an independent logger writing to out, for tests and callers
// that want their own sink.
func New(out io.Writer, level logrus.Level) *logrus.Entry {
	l := newLogger()
	l.SetOutput(out)
	l.SetLevel(level)
	return logrus.NewEntry(l)
}
