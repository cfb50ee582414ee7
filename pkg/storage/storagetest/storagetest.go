// Package storagetest provides migrated databases for tests.
package storagetest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/signup/pkg/storage"
)

var sqliteSeq atomic.Int64

// NewSQLite returns a migrated in-memory SQLite database, closed when the
// test ends. Each call gets its own database.
func NewSQLite(t testing.TB) *sqlx.DB {
	t.Helper()

	cfg := storage.DefaultConfig()
	cfg.Driver = storage.DriverSQLite
	cfg.DSN = fmt.Sprintf("file:signup_test_%d?mode=memory&cache=shared&_foreign_keys=on", sqliteSeq.Add(1))

	db, err := storage.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.Migrate(db), "failed to run migrations")
	return db
}
