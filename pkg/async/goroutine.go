// Package async provides safe goroutine helpers for fire-and-forget work.
package async

import (
	"context"
	"time"

	"github.com/BDeshi155/pdf-gpt/pkg/observability"
)

// SafeGo executes a function in a goroutine with context cancellation,
// panic recovery, and timeout enforcement. Use this instead of a bare
// `go func()` for background work such as usage counter updates and
// cache invalidation.
//
// Example:
//
//	async.SafeGo(ctx, logger, 5*time.Second, "usage increment", func(ctx context.Context) error {
//	    return usageStore.IncrementUploads(ctx, userID)
//	})
func SafeGo(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(parentCtx, timeout)
		defer cancel()

		defer observability.RecoverPanic(logger, taskName)

		if err := fn(ctx); err != nil {
			logger.WithError(err).WithField("task", taskName).Error("background task failed")
		}
	}()
}

// SafeGoNoError is like SafeGo but for functions that don't return errors.
func SafeGoNoError(parentCtx context.Context, logger *observability.Logger, timeout time.Duration, taskName string, fn func(context.Context)) {
	SafeGo(parentCtx, logger, timeout, taskName, func(ctx context.Context) error {
		fn(ctx)
		return nil
	})
}
