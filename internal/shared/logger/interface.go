package logger

import (
	"context"
	"log/slog"
	"runtime"
	"time"
)

// Interface is the logger every component receives. The *w methods take
// alternating keys and values.
type Interface interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Interface
	// Named scopes the logger to a component. Nested names join with a dot.
	Named(name string) Interface

	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

type slogLogger struct {
	logger *slog.Logger
	// name is emitted per record, not baked into logger, so Named can
	// replace it.
	name string
}

// NewLogger wraps the process logger configured by Init.
func NewLogger() Interface {
	return &slogLogger{logger: Get()}
}

func NewLoggerWithSlog(slogLog *slog.Logger) Interface {
	return &slogLogger{logger: slogLog}
}

// NewNop returns a logger that discards everything.
func NewNop() Interface {
	return &slogLogger{logger: slog.New(slog.DiscardHandler)}
}

// log must be called directly from an exported method so the recorded
// source points at the caller of that method.
func (l *slogLogger) log(level slog.Level, msg string, args []any) {
	ctx := context.Background()
	if !l.logger.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	if l.name != "" {
		r.AddAttrs(slog.String("logger", l.name))
	}
	r.Add(args...)
	_ = l.logger.Handler().Handle(ctx, r)
}

func (l *slogLogger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args) }

func (l *slogLogger) Info(msg string, args ...any) { l.log(slog.LevelInfo, msg, args) }

func (l *slogLogger) Warn(msg string, args ...any) { l.log(slog.LevelWarn, msg, args) }

func (l *slogLogger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args) }

func (l *slogLogger) With(args ...any) Interface {
	return &slogLogger{logger: l.logger.With(args...), name: l.name}
}

func (l *slogLogger) Named(name string) Interface {
	if l.name != "" {
		name = l.name + "." + name
	}
	return &slogLogger{logger: l.logger, name: name}
}

func (l *slogLogger) Debugw(msg string, keysAndValues ...any) { l.log(slog.LevelDebug, msg, keysAndValues) }

func (l *slogLogger) Infow(msg string, keysAndValues ...any) { l.log(slog.LevelInfo, msg, keysAndValues) }

func (l *slogLogger) Warnw(msg string, keysAndValues ...any) { l.log(slog.LevelWarn, msg, keysAndValues) }

func (l *slogLogger) Errorw(msg string, keysAndValues ...any) { l.log(slog.LevelError, msg, keysAndValues) }
