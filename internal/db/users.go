// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/toeirei/intelhub/internal/model"
	"github.com/uptrace/bun"
)

// UserModel maps the `users` table for Bun queries.
type UserModel struct {
	bun.BaseModel `bun:"table:users"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Username      string `bun:"username"`
	PasswordHash  string `bun:"password_hash"`
	Role          string `bun:"role"`
}

func userModelToModel(m UserModel) model.User {
	return model.User{ID: m.ID, Username: m.Username, PasswordHash: m.PasswordHash, Role: m.Role}
}

// storeErr maps duplicates to ErrDuplicate and everything else to
// model.ErrStoreUnavailable, keeping the driver error in the chain.
func storeErr(op string, err error) error {
	if err = MapDBError(err); errors.Is(err, ErrDuplicate) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, model.ErrStoreUnavailable, err)
}

// UserStore is the relational credential store.
type UserStore struct {
	db *DB
}

// NewUserStore returns a UserStore backed by d.
func NewUserStore(d *DB) *UserStore {
	return &UserStore{db: d}
}

// FindByUsername returns the user with exactly this username, or (nil, nil).
func (s *UserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var m UserModel
	err := s.db.bun.NewSelect().Model(&m).Where("username = ?", username).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("find user", err)
	}
	u := userModelToModel(m)
	return &u, nil
}

// Insert stores a new user and returns its id. An existing username yields
// ErrDuplicate.
func (s *UserStore) Insert(ctx context.Context, username, passwordHash, role string) (int64, error) {
	m := &UserModel{Username: username, PasswordHash: passwordHash, Role: role}
	if _, err := s.db.bun.NewInsert().Model(m).Exec(ctx); err != nil {
		return 0, storeErr("insert user", err)
	}
	dbLogf("db: inserted user %q with id %d", username, m.ID)
	return m.ID, nil
}

// InsertIfAbsent inserts the user unless the username is already taken and
// reports whether a row was written. It never returns ErrDuplicate.
func (s *UserStore) InsertIfAbsent(ctx context.Context, username, passwordHash, role string) (bool, error) {
	return insertUserIfAbsent(ctx, s.db.bun, s.db.dbType, username, passwordHash, role)
}

func insertUserIfAbsent(ctx context.Context, idb bun.IDB, dbType, username, passwordHash, role string) (bool, error) {
	var query string
	switch dbType {
	case TypePostgres:
		query = "INSERT INTO users (username, password_hash, role) VALUES (?, ?, ?) ON CONFLICT (username) DO NOTHING"
	case TypeMySQL:
		query = "INSERT IGNORE INTO users (username, password_hash, role) VALUES (?, ?, ?)"
	default:
		query = "INSERT OR IGNORE INTO users (username, password_hash, role) VALUES (?, ?, ?)"
	}
	res, err := ExecRaw(ctx, idb, query, username, passwordHash, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, storeErr("insert user if absent", err)
	}
	return rowsAffected(res) > 0, nil
}

// UpdatePasswordHash replaces the stored hash of username.
func (s *UserStore) UpdatePasswordHash(ctx context.Context, username, passwordHash string) error {
	_, err := s.db.bun.NewUpdate().Model((*UserModel)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return storeErr("update password hash", err)
	}
	return nil
}

// UpdateRole sets the role of username and returns the number of rows changed.
func (s *UserStore) UpdateRole(ctx context.Context, username, role string) (int64, error) {
	res, err := s.db.bun.NewUpdate().Model((*UserModel)(nil)).
		Set("role = ?", role).
		Where("username = ?", username).
		Exec(ctx)
	if err != nil {
		return 0, storeErr("update role", err)
	}
	return rowsAffected(res), nil
}

// List returns all users ordered by id.
func (s *UserStore) List(ctx context.Context) ([]model.User, error) {
	return listUsers(ctx, s.db.bun)
}

func listUsers(ctx context.Context, idb bun.IDB) ([]model.User, error) {
	var ms []UserModel
	if err := idb.NewSelect().Model(&ms).Order("id ASC").Scan(ctx); err != nil {
		return nil, storeErr("list users", err)
	}
	out := make([]model.User, 0, len(ms))
	for _, m := range ms {
		out = append(out, userModelToModel(m))
	}
	return out, nil
}

// Count returns the number of stored users.
func (s *UserStore) Count(ctx context.Context) (int, error) {
	n, err := s.db.bun.NewSelect().Model((*UserModel)(nil)).Count(ctx)
	if err != nil {
		return 0, storeErr("count users", err)
	}
	return n, nil
}
