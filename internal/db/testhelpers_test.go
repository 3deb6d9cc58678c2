// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func testDSN(t *testing.T) string {
	return "file:" + t.Name() + "?mode=memory&cache=shared"
}

// newTestDB opens a migrated in-memory sqlite database that lives for the
// duration of the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := Open(context.Background(), Options{Type: TypeSQLite, DSN: testDSN(t)})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

// newMockDB wraps a sqlmock connection without running migrations.
func newMockDB(t *testing.T, dbType string) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return &DB{bun: createBunDB(sqlDB, dbType), dbType: dbType}, mock
}

// withSQLOpen overrides sqlOpenFunc for the duration of the test.
func withSQLOpen(t *testing.T, fn func(driverName, dsn string) (*sql.DB, error)) {
	t.Helper()
	orig := sqlOpenFunc
	sqlOpenFunc = fn
	t.Cleanup(func() { sqlOpenFunc = orig })
}
