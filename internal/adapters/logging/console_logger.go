package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/andrescamacho/colonysim-go/internal/application/common"
)

// Options selects the console logger output
type Options struct {
	Level    string // debug, info, warning, error
	Format   string // text, json
	Output   string // stdout, stderr, file
	FilePath string
}

// ConsoleLogger implements common.Logger over a slog handler
type ConsoleLogger struct {
	logger *slog.Logger
	closer io.Closer
}

// NewConsoleLogger builds a logger from options. The caller closes it when
// the output is a file.
func NewConsoleLogger(opts Options) (*ConsoleLogger, error) {
	var (
		w      io.Writer
		closer io.Closer
	)
	switch opts.Output {
	case "", "stderr":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	case "file":
		f, err := os.OpenFile(opts.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		w, closer = f, f
	default:
		return nil, fmt.Errorf("unknown log output %q", opts.Output)
	}

	logger := NewWriterLogger(w, opts.Format, opts.Level)
	logger.closer = closer
	return logger, nil
}

// NewWriterLogger builds a logger writing to w
func NewWriterLogger(w io.Writer, format, level string) *ConsoleLogger {
	handlerOpts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return &ConsoleLogger{logger: slog.New(handler)}
}

// ParseLevel maps the configured level names onto slog levels. Unknown names
// select info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log implements common.Logger
func (l *ConsoleLogger) Log(level, message string, metadata map[string]interface{}) {
	attrs := make([]slog.Attr, 0, len(metadata))
	for k, v := range metadata {
		attrs = append(attrs, slog.Any(k, v))
	}
	l.logger.LogAttrs(context.Background(), ParseLevel(level), message, attrs...)
}

// Slog exposes the underlying logger
func (l *ConsoleLogger) Slog() *slog.Logger {
	return l.logger
}

// Close releases the log file, if any
func (l *ConsoleLogger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// FanOut delivers every entry to each logger
type FanOut []common.Logger

// Log implements common.Logger
func (f FanOut) Log(level, message string, metadata map[string]interface{}) {
	for _, l := range f {
		if l != nil {
			l.Log(level, message, metadata)
		}
	}
}
