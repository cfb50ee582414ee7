// Package storage opens the sign-up database and owns its schema.
//
// # Overview
//
// Two drivers are supported: PostgreSQL (lib/pq) for deployments and SQLite
// (mattn/go-sqlite3) for local development and tests. Both are reached
// through sqlx so that queries can be written once with '?' placeholders and
// rebound per driver.
//
// # Schema
//
// Migrations are embedded in the binary, one directory per driver, and
// applied with golang-migrate:
//
//	db, err := storage.Open(ctx, cfg)
//	if err := storage.Migrate(db); err != nil { ... }
//
// The schema holds users, plans, addons, subscriptions, subscription_addons
// and app_config. The second migration seeds the default catalog.
//
// # Errors
//
// UniqueViolation recognizes unique-constraint failures from either driver
// and reports the violated constraint, so callers can map them to domain
// errors without importing driver packages.
package storage
