// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"strings"

	"github.com/toeirei/intelhub/internal/model"
)

// ErrDuplicate is returned when attempting to insert a record that already
// exists. It is the same value as model.ErrDuplicate.
var ErrDuplicate = model.ErrDuplicate

// MapDBError maps unique constraint violations from any of the supported
// drivers to ErrDuplicate. The match is string based so that no driver
// package needs importing here.
func MapDBError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicate) {
		return err
	}
	le := strings.ToLower(err.Error())
	// MySQL duplicate entry (1062), Postgres unique violation (23505), SQLite unique constraint
	if strings.Contains(le, "duplicate") || strings.Contains(le, "unique") || strings.Contains(le, "23505") || strings.Contains(le, "1062") {
		return ErrDuplicate
	}
	return err
}
