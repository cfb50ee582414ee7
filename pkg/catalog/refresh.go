package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/signup/pkg/async"
	"github.com/platinummonkey/signup/pkg/observability"
)

// Refresher periodically drops cached catalog entries and warms them again
// from the provider chain, so price changes made directly in the database
// become visible without a restart.
type Refresher struct {
	cron    *cron.Cron
	source  Provider
	caches  []Invalidator
	timeout time.Duration
	logger  *logrus.Logger
}

// NewRefresher schedules a refresh using a standard cron spec or a descriptor
// such as "@every 5m"
func NewRefresher(schedule string, source Provider, logger *logrus.Logger, caches ...Invalidator) (*Refresher, error) {
	r := &Refresher{
		cron:    cron.New(),
		source:  source,
		caches:  caches,
		timeout: 30 * time.Second,
		logger:  logger,
	}

	if _, err := r.cron.AddFunc(schedule, func() {
		defer observability.RecoverPanic(r.logger, "catalog refresh")
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.Refresh(ctx); err != nil {
			r.logger.WithError(err).Warn("Catalog refresh failed")
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", schedule, err)
	}

	return r, nil
}

// Refresh invalidates the caches in the order they were given, innermost
// first, then reloads the catalog through source. Dropping an outer layer
// before the one beneath it could refill it from stale data. A cache that
// fails to invalidate does not stop the others.
func (r *Refresher) Refresh(ctx context.Context) error {
	var errs []error
	for _, c := range r.caches {
		if err := async.Run(ctx, r.timeout, c.Invalidate); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to invalidate catalog cache: %w", errors.Join(errs...))
	}

	cat, err := Load(ctx, r.source)
	if err != nil {
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"plans":  len(cat.Plans()),
		"addons": len(cat.AddOns()),
	}).Debug("Catalog cache refreshed")
	return nil
}

// Start runs the schedule in the background
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop stops the schedule and waits for a running refresh to finish
func (r *Refresher) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
