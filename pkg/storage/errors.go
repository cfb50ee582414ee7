package storage

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const pqUniqueViolation = "23505"

// UniqueViolation reports whether err is a unique-constraint failure and, if
// so, which constraint was violated. PostgreSQL reports the constraint name
// (e.g. "users_email_key"); SQLite reports "table.column".
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return pqErr.Constraint, true
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return strings.TrimPrefix(sqliteErr.Error(), "UNIQUE constraint failed: "), true
	}

	return "", false
}
