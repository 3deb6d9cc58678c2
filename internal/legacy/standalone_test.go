// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package legacy_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/toeirei/intelhub/internal/auth"
	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/legacy"
	"github.com/toeirei/intelhub/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// TestStandaloneRegisterLogin drives the auth service directly over the
// flat file, as the pre-migration tool did.
func TestStandaloneRegisterLogin(t *testing.T) {
	i18n.Init("en")
	ctx := context.Background()
	store := legacy.NewFileStore(filepath.Join(t.TempDir(), "users.txt"))

	opts := security.DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	h, err := security.NewPasswordHasher(opts)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	svc := auth.NewService(store, h, auth.DefaultPolicy())

	res, err := svc.Register(ctx, "alice", "SecurePass123!", "")
	if err != nil || !res.OK {
		t.Fatalf("Register: %+v %v", res, err)
	}
	res, err = svc.Register(ctx, "alice", "SecurePass123!", "")
	if err != nil || res.OK || !errors.Is(res.Reason, auth.ErrDuplicateUser) {
		t.Fatalf("expected duplicate rejection: %+v %v", res, err)
	}

	res, err = svc.Login(ctx, "alice", "SecurePass123!")
	if err != nil || !res.OK || res.Message != "Welcome, alice!" {
		t.Fatalf("Login: %+v %v", res, err)
	}
	res, err = svc.Login(ctx, "alice", "wrongpassword")
	if err != nil || res.OK || res.Message != "Incorrect password." {
		t.Fatalf("Login wrong password: %+v %v", res, err)
	}
	res, err = svc.Login(ctx, "nobody", "SecurePass123!")
	if err != nil || res.OK || !errors.Is(res.Reason, auth.ErrNotFound) {
		t.Fatalf("Login unknown user: %+v %v", res, err)
	}
}

func TestStandaloneRegisterRejectsLineBreak(t *testing.T) {
	i18n.Init("en")
	ctx := context.Background()
	store := legacy.NewFileStore(filepath.Join(t.TempDir(), "users.txt"))

	opts := security.DefaultOptions()
	opts.BcryptCost = bcrypt.MinCost
	h, err := security.NewPasswordHasher(opts)
	if err != nil {
		t.Fatalf("NewPasswordHasher: %v", err)
	}
	svc := auth.NewService(store, h, auth.DefaultPolicy())

	res, err := svc.Register(ctx, "ab\ncd", "SecurePass123!", "")
	if err != nil {
		t.Fatalf("line break must be a rejection, not an error: %v", err)
	}
	if res.OK || !errors.Is(res.Reason, auth.ErrValidation) {
		t.Fatalf("expected validation rejection: %+v", res)
	}
	if store.Exists() {
		t.Fatalf("nothing should have been written")
	}
}
