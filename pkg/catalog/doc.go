// Package catalog provides the read-only plan and add-on catalog offered by the
// sign-up wizard.
//
// # Overview
//
// A Catalog is an immutable snapshot of Plans and AddOns, each priced per
// month and per year, plus the designated default plan. Snapshots are built
// once per wizard session and never mutated afterwards.
//
// Identifiers are normalized to their canonical string form at this boundary:
// integer database keys, JSON numbers and JSON strings all become an ID, and
// two IDs are equal only when their strings are equal.
//
// # Providers
//
// A Provider exposes the three catalog reads (plans, add-ons, default plan).
// Load runs them in parallel and joins the results:
//
//	store := catalog.NewStore(db)
//	cat, err := catalog.Load(ctx, store)
//
// Providers compose. The SQL Store sits at the bottom; RedisCache and
// MemoryCache decorate it, and a Refresher invalidates the caches on a cron
// schedule:
//
//	var p catalog.Provider = catalog.NewStore(db)
//	p = catalog.NewRedisCache(p, redisClient, 10*time.Minute)
//	p = catalog.NewMemoryCache(p, 16, time.Minute)
//
// The wizard front end talks to the HTTP API instead, through Client, which
// implements Loader.
//
// # Seeding
//
// ReadSeedFile parses a YAML catalog and Seed upserts it into the database.
package catalog
