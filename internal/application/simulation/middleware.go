package simulation

import (
	"context"

	"github.com/andrescamacho/fascia-warehouse/internal/application/common"
)

// HandlerFunc applies one event
type HandlerFunc func(ctx context.Context, ev Event) error

// Middleware wraps event handling with cross-cutting concerns such as
// metrics or journaling
type Middleware func(ctx context.Context, ev Event, next HandlerFunc) error

// chain wraps handler so the first middleware runs outermost
func chain(handler HandlerFunc, middleware ...Middleware) HandlerFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		mw := middleware[i]
		next := handler
		handler = func(ctx context.Context, ev Event) error {
			return mw(ctx, ev, next)
		}
	}
	return handler
}

// CommandLogMiddleware logs every event before it is applied
func CommandLogMiddleware() Middleware {
	return func(ctx context.Context, ev Event, next HandlerFunc) error {
		common.LoggerFromContext(ctx).Log("DEBUG", "Command: "+ev.String(), map[string]interface{}{
			"kind": ev.Kind(),
		})
		return next(ctx, ev)
	}
}
