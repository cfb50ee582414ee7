package main

import (
	"context"

	"github.com/sirupsen/logrus"
)

// cleanups undo a partially started server in reverse order. Once the
// servers are up they are handed to the shutdown manager instead.
type cleanups []func(context.Context) error

func (c *cleanups) add(fn func(context.Context) error) {
	*c = append(*c, fn)
}

// reversed returns the cleanups in the order they must run
func (c cleanups) reversed() []func(context.Context) error {
	out := make([]func(context.Context) error, 0, len(c))
	for i := len(c) - 1; i >= 0; i-- {
		out = append(out, c[i])
	}
	return out
}

func (c cleanups) run(ctx context.Context, logger *logrus.Logger) {
	for _, fn := range c.reversed() {
		if err := fn(ctx); err != nil {
			logger.WithError(err).Warn("Cleanup after failed start returned an error")
		}
	}
}
