// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package db is the relational data access layer for Intelhub.
//
// Open connects to SQLite, PostgreSQL or MySQL through bun, applies the
// embedded per-dialect migrations and returns a *DB. The typed stores
// (UserStore, IncidentStore, Reports, DatasetLoader, Backups) are thin
// wrappers around it and can be constructed as often as needed.
//
// Lookups return (nil, nil) when a row does not exist. Unique constraint
// violations surface as ErrDuplicate via MapDBError.
//
// Tests use an in-memory SQLite database:
//
//	d, err := db.Open(ctx, db.Options{Type: "sqlite", DSN: "file:" + t.Name() + "?mode=memory&cache=shared"})
package db
