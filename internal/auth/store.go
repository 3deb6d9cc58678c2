// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"context"

	"github.com/toeirei/intelhub/internal/model"
)

// UserStore is the persistence the service needs. Both the relational
// store and the legacy flat file implement it.
type UserStore interface {
	// FindByUsername returns (nil, nil) when no such user exists.
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// Insert returns model.ErrDuplicate when the username is taken.
	Insert(ctx context.Context, username, passwordHash, role string) (int64, error)
}

// PasswordUpdater is implemented by stores that can replace a stored hash.
type PasswordUpdater interface {
	UpdatePasswordHash(ctx context.Context, username, passwordHash string) error
}
