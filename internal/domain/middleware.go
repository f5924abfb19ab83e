package domain

import (
	"context"
	"time"

	"github.com/zjrosen/strata/internal/log"
)

// NewLoggingMiddleware logs every command and query with its duration.
// Failures log at error level, successes at debug.
func NewLoggingMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, dispatch Dispatch) error {
			start := time.Now()
			err := next.Handle(ctx, dispatch)
			duration := time.Since(start)

			if err != nil {
				log.Error(log.CatCommands, string(dispatch.Kind)+" failed",
					"name", dispatch.Name,
					"id", dispatch.ID,
					"domain", dispatch.Domain,
					"duration", duration,
					"error", err.Error(),
				)
			} else {
				log.Debug(log.CatCommands, string(dispatch.Kind)+" completed",
					"name", dispatch.Name,
					"id", dispatch.ID,
					"domain", dispatch.Domain,
					"duration", duration,
				)
			}
			return err
		})
	}
}
