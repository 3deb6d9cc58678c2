// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/toeirei/intelhub/internal/model"
)

func TestMapDBError_DuplicateStrings(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"mysql duplicate entry", errors.New("Error 1062: Duplicate entry 'alice' for key 'users.username'")},
		{"postgres unique violation", errors.New("ERROR: duplicate key value violates unique constraint \"users_username_key\" (SQLSTATE 23505)")},
		{"sqlite unique constraint", errors.New("constraint failed: UNIQUE constraint failed: users.username (2067)")},
		{"already mapped", fmt.Errorf("insert user: %w", ErrDuplicate)},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if mapped := MapDBError(c.err); !errors.Is(mapped, ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got: %v", mapped)
			}
		})
	}
}

func TestMapDBError_NonDuplicatePassthrough(t *testing.T) {
	if MapDBError(nil) != nil {
		t.Fatalf("expected nil for nil input")
	}
	e := errors.New("some network error")
	mapped := MapDBError(e)
	if errors.Is(mapped, ErrDuplicate) {
		t.Fatalf("did not expect ErrDuplicate for non-duplicate error")
	}
	if mapped != e {
		t.Fatalf("expected original error to be returned unchanged, got: %v", mapped)
	}
}

func TestErrDuplicateIsModelSentinel(t *testing.T) {
	if !errors.Is(ErrDuplicate, model.ErrDuplicate) {
		t.Fatalf("db.ErrDuplicate must match model.ErrDuplicate")
	}
}

func TestStoreErr(t *testing.T) {
	dup := storeErr("insert user", errors.New("UNIQUE constraint failed: users.username"))
	if !errors.Is(dup, ErrDuplicate) || errors.Is(dup, model.ErrStoreUnavailable) {
		t.Fatalf("duplicate should not be unavailable: %v", dup)
	}
	cause := errors.New("database is locked")
	other := storeErr("find user", cause)
	if !errors.Is(other, model.ErrStoreUnavailable) || !errors.Is(other, cause) {
		t.Fatalf("expected unavailable wrapping the cause, got %v", other)
	}
}
