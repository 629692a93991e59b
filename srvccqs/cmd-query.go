package decorator

import (
	"context"
	"log/slog"
	"time"

	"github.com/programme-lv/autograde/logger"
)

// P - params
type CmdHandler[P any] interface {
	Handle(ctx context.Context, p P) error
}

// Q - query, R - result
type QueryHandler[Q any, R any] interface {
	Handle(ctx context.Context, q Q) (R, error)
}

type CmdHandlerFunc[P any] func(ctx context.Context, p P) error

func (f CmdHandlerFunc[P]) Handle(ctx context.Context, p P) error {
	return f(ctx, p)
}

type QueryHandlerFunc[Q any, R any] func(ctx context.Context, q Q) (R, error)

func (f QueryHandlerFunc[Q, R]) Handle(ctx context.Context, q Q) (R, error) {
	return f(ctx, q)
}

// WithCmdLogging wraps a command so that its name, duration and outcome are logged.
func WithCmdLogging[P any](name string, h CmdHandler[P]) CmdHandler[P] {
	return CmdHandlerFunc[P](func(ctx context.Context, p P) error {
		start := time.Now()
		err := h.Handle(ctx, p)
		log := logger.FromContext(ctx)
		if err != nil {
			log.Warn("command failed", "cmd", name, "duration", time.Since(start), "error", err)
		} else {
			log.Debug("command handled", "cmd", name, "duration", time.Since(start))
		}
		return err
	})
}

// WithQueryLogging is WithCmdLogging for queries.
func WithQueryLogging[Q any, R any](name string, h QueryHandler[Q, R]) QueryHandler[Q, R] {
	return QueryHandlerFunc[Q, R](func(ctx context.Context, q Q) (R, error) {
		start := time.Now()
		res, err := h.Handle(ctx, q)
		log := logger.FromContext(ctx)
		if err != nil {
			log.Log(ctx, slog.LevelWarn, "query failed", "query", name, "duration", time.Since(start), "error", err)
		} else {
			log.Log(ctx, slog.LevelDebug, "query handled", "query", name, "duration", time.Since(start))
		}
		return res, err
	})
}
