// Package recorder emits operation lifecycle events (started, succeeded,
// failed) for observability. Recording is best-effort: no implementation may
// fail or delay the operation it describes.
package recorder

import (
	"context"
	"log/slog"

	"github.com/crmlite/contact-api/internal/logging"
)

type Recorder interface {
	Started(ctx context.Context, op string, attrs ...any)
	Succeeded(ctx context.Context, op string, attrs ...any)
	Failed(ctx context.Context, op string, err error, attrs ...any)
}

// Slog records lifecycle events through the context-scoped logger, so events
// carry the request id attached by the logging middleware.
type Slog struct{}

func NewSlog() *Slog {
	return &Slog{}
}

func (Slog) Started(ctx context.Context, op string, attrs ...any) {
	emit(ctx, slog.LevelInfo, op, "started", nil, attrs)
}

func (Slog) Succeeded(ctx context.Context, op string, attrs ...any) {
	emit(ctx, slog.LevelInfo, op, "success", nil, attrs)
}

func (Slog) Failed(ctx context.Context, op string, err error, attrs ...any) {
	emit(ctx, slog.LevelWarn, op, "failed", err, attrs)
}

func emit(ctx context.Context, level slog.Level, op, outcome string, err error, attrs []any) {
	// A broken recorder must never take the business operation down with it.
	defer func() { _ = recover() }()

	log := logging.FromContext(ctx)
	all := make([]any, 0, len(attrs)+4)
	all = append(all, "op", op, "outcome", outcome)
	if err != nil {
		all = append(all, "error", err)
	}
	all = append(all, attrs...)
	log.Log(ctx, level, "operation "+outcome, all...)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Started(context.Context, string, ...any)       {}
func (Nop) Succeeded(context.Context, string, ...any)     {}
func (Nop) Failed(context.Context, string, error, ...any) {}
