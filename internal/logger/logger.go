package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

type contextKey struct{}

var loggerKey = contextKey{}

const (
	maxLogSizeMB  = 5
	maxLogBackups = 2
)

// Options controls where and how verbosely the application logs.
type Options struct {
	Debug   bool
	Verbose bool
	// FilePath enables a size-rotated log file. Empty disables it.
	FilePath string
	Stderr   io.Writer
}

// Initialize installs the default logger: a pretty console handler on
// stderr plus, when FilePath is set, a JSON handler on a rotating file
// that always records Info and above. The returned closer flushes the file.
func Initialize(opts Options) io.Closer {
	level := slog.LevelWarn

	if opts.Debug {
		level = slog.LevelDebug
	} else if opts.Verbose {
		level = slog.LevelInfo
	}

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	handlers := []slog.Handler{
		NewPrettyHandler(stderr, &slog.HandlerOptions{
			Level:     level,
			AddSource: opts.Debug,
		}),
	}

	var closer io.Closer = nopCloser{}
	if opts.FilePath != "" {
		file := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		}
		fileLevel := slog.LevelInfo
		if opts.Debug {
			fileLevel = slog.LevelDebug
		}
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: fileLevel}))
		closer = file
	}

	slog.SetDefault(slog.New(newFanoutHandler(handlers...)))
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func With(ctx context.Context, args ...any) context.Context {
	l := FromContext(ctx).With(args...)
	return WithLogger(ctx, l)
}

func Debug(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Debug(msg, args...)
}

func Info(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Info(msg, args...)
}

func Warn(ctx context.Context, msg string, args ...any) {
	FromContext(ctx).Warn(msg, args...)
}

func Error(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append(args, slog.Any("error", err))
	}
	FromContext(ctx).Error(msg, args...)
}

// fanoutHandler dispatches each record to every handler that accepts its level.
type fanoutHandler struct {
	handlers []slog.Handler
}

func newFanoutHandler(handlers ...slog.Handler) *fanoutHandler {
	return &fanoutHandler{handlers: handlers}
}

func (f *fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f *fanoutHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return newFanoutHandler(next...)
}

func (f *fanoutHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(f.handlers))
	for i, h := range f.handlers {
		next[i] = h.WithGroup(name)
	}
	return newFanoutHandler(next...)
}
