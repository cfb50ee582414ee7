package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Provider exposes the catalog reads
type Provider interface {
	// ListPlans returns plans ordered ascending by monthly price
	ListPlans(ctx context.Context) ([]Plan, error)
	// ListAddOns returns add-ons ordered ascending by monthly price
	ListAddOns(ctx context.Context) ([]AddOn, error)
	// DefaultPlanID returns the configured default plan, or the zero ID
	DefaultPlanID(ctx context.Context) (ID, error)
}

// Loader produces a complete catalog snapshot
type Loader interface {
	Load(ctx context.Context) (*Catalog, error)
}

// Invalidator is implemented by caching providers
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CacheRecorder receives cache lookups outcomes, e.g. for metrics
type CacheRecorder interface {
	RecordCacheResult(layer, result string)
}

// Cache lookup outcomes reported to a CacheRecorder
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// LoadError reports a failed catalog load. It is recoverable only by starting
// a new session.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load catalog: %v", e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Load reads plans, add-ons and the default plan in parallel. Any failure
// fails the whole load.
func Load(ctx context.Context, p Provider) (*Catalog, error) {
	var (
		plans     []Plan
		addOns    []AddOn
		defaultID ID
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		plans, err = p.ListPlans(gctx)
		if err != nil {
			return fmt.Errorf("failed to list plans: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		addOns, err = p.ListAddOns(gctx)
		if err != nil {
			return fmt.Errorf("failed to list add-ons: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		defaultID, err = p.DefaultPlanID(gctx)
		if err != nil {
			return fmt.Errorf("failed to get default plan: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, &LoadError{Err: err}
	}

	return New(plans, addOns, defaultID), nil
}

type providerLoader struct {
	provider Provider
}

// NewLoader adapts a Provider to a Loader
func NewLoader(p Provider) Loader {
	return &providerLoader{provider: p}
}

func (l *providerLoader) Load(ctx context.Context) (*Catalog, error) {
	return Load(ctx, l.provider)
}
