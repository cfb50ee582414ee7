package async

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// SafeGo runs fn in a goroutine with a timeout and panic recovery. Errors
// and panics are logged, never propagated. The returned channel is closed
// when fn has finished.
//
// Example:
//
//	SafeGo(ctx, logger, 30*time.Second, "catalog warm-up", func(ctx context.Context) error {
//	    _, err := catalog.Load(ctx, provider)
//	    return err
//	})
func SafeGo(parentCtx context.Context, logger *logrus.Logger, timeout time.Duration, taskName string, fn func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := Run(parentCtx, timeout, fn); err != nil {
			logger.WithError(err).WithField("task", taskName).Warn("Background task failed")
		}
	}()
	return done
}

// Run calls fn with a context bounded by timeout and turns a panic into an
// error
func Run(parentCtx context.Context, timeout time.Duration, fn func(context.Context) error) (err error) {
	ctx, cancel := context.WithTimeout(parentCtx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()

	return fn(ctx)
}
