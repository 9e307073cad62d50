package health

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/antiforgery/core/handler"
	"github.com/dmitrymomot/antiforgery/core/logger"
	"github.com/dmitrymomot/antiforgery/core/response"
)

// Check is a named dependency probe.
type Check struct {
	Name  string
	Probe func(context.Context) error
}

// Liveness always answers "ALIVE".
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}

// Readiness answers "READY" when every probe succeeds, 503 otherwise.
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	if log == nil {
		log = logger.Nop()
	}
	return func(ctx C) handler.Response {
		for _, c := range checks {
			if err := c.Probe(ctx); err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					slog.String("check", c.Name),
					logger.Error(err),
				)
				return response.Error(response.ErrServiceUnavailable)
			}
		}
		return response.String("READY")
	}
}
