package helper

import (
	"context"
	"log/slog"
)

// ContextualLoggerSpy implements rulesquery.ContextualLogger by writing into a LogHandlerSpy.
type ContextualLoggerSpy struct {
	*LogHandlerSpy
	logger *slog.Logger
}

// NewContextualLoggerSpy creates a new ContextualLoggerSpy.
func NewContextualLoggerSpy() *ContextualLoggerSpy {
	handler := NewLogHandlerSpy(false)

	return &ContextualLoggerSpy{LogHandlerSpy: handler, logger: slog.New(handler)}
}

// DebugContext implements rulesquery.ContextualLogger.
func (l *ContextualLoggerSpy) DebugContext(ctx context.Context, msg string, args ...any) {
	l.logger.DebugContext(ctx, msg, args...)
}

// InfoContext implements rulesquery.ContextualLogger.
func (l *ContextualLoggerSpy) InfoContext(ctx context.Context, msg string, args ...any) {
	l.logger.InfoContext(ctx, msg, args...)
}

// WarnContext implements rulesquery.ContextualLogger.
func (l *ContextualLoggerSpy) WarnContext(ctx context.Context, msg string, args ...any) {
	l.logger.WarnContext(ctx, msg, args...)
}

// ErrorContext implements rulesquery.ContextualLogger.
func (l *ContextualLoggerSpy) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.logger.ErrorContext(ctx, msg, args...)
}
