package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/pushdown/pkg/domain"
)

// ResultOf classifies how a run ended: "accepted" for nil, "rejected" for a
// word outside the language and "error" for anything else (step limit,
// cancellation, inconsistency).
func ResultOf(err error) string {
	switch {
	case err == nil:
		return "accepted"
	case errors.Is(err, domain.ErrRejected):
		return "rejected"
	default:
		return "error"
	}
}

// Chain fans every event out to each set of hooks, in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunStart: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnRunStart != nil {
					h.OnRunStart(ctx, e)
				}
			}
		},
		OnStep: func(ctx context.Context, e *domain.StepEvent) {
			for _, h := range hooks {
				if h.OnStep != nil {
					h.OnStep(ctx, e)
				}
			}
		},
		OnAccept: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnAccept != nil {
					h.OnAccept(ctx, e)
				}
			}
		},
		OnReject: func(ctx context.Context, e *domain.RunEvent) {
			for _, h := range hooks {
				if h.OnReject != nil {
					h.OnReject(ctx, e)
				}
			}
		},
	}
}

// LoggingHooks records run outcomes at info level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnAccept: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run accepted", "automaton", e.Automaton, "steps", e.Steps)
		},
		OnReject: func(ctx context.Context, e *domain.RunEvent) {
			logger.InfoContext(ctx, "run rejected",
				"automaton", e.Automaton,
				"steps", e.Steps,
				"result", ResultOf(e.Err),
				"err", e.Err,
			)
		},
	}
}
