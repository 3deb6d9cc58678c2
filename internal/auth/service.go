// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package auth implements registration and login on top of a UserStore,
// a password hasher and the deployment's credential Policy.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/logging"
	"github.com/toeirei/intelhub/internal/model"
	"github.com/toeirei/intelhub/internal/security"
)

// Result is the outcome of a register or login attempt. Message is always
// set and safe to show to an interactive user. Reason is nil on success and
// wraps one of ErrValidation, ErrDuplicateUser, ErrNotFound or
// ErrInvalidCredentials on rejection.
type Result struct {
	OK      bool
	Message string
	Reason  error
}

// Service orchestrates the policy, the hasher and a single store.
type Service struct {
	store  UserStore
	hasher security.Hasher
	policy Policy
}

// NewService wires a Service.
func NewService(store UserStore, hasher security.Hasher, policy Policy) *Service {
	return &Service{store: store, hasher: hasher, policy: policy}
}

// Policy returns the policy the service validates with.
func (s *Service) Policy() Policy { return s.policy }

func reject(reason error, message string) Result {
	return Result{OK: false, Message: message, Reason: reason}
}

// Register validates the credentials, refuses existing usernames and stores
// a new user with a hashed password. An empty role becomes model.DefaultRole.
// The returned error is non-nil only when the store cannot be used.
func (s *Service) Register(ctx context.Context, username, password, role string) (Result, error) {
	username = strings.TrimSpace(username)
	if err := s.policy.ValidateUsername(username); err != nil {
		return reject(err, err.Error()), nil
	}
	if err := s.policy.ValidatePassword(password); err != nil {
		return reject(err, err.Error()), nil
	}
	if role == "" {
		role = model.DefaultRole
	}

	existing, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return Result{}, fmt.Errorf("auth: lookup %q: %w", username, err)
	}
	if existing != nil {
		return reject(ErrDuplicateUser, i18n.T("auth.register_duplicate", username)), nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return Result{}, fmt.Errorf("auth: hash password: %w", err)
	}

	if _, err := s.store.Insert(ctx, username, hash, role); err != nil {
		// Lost a race against another writer; the constraint caught it.
		if errors.Is(err, model.ErrDuplicate) {
			return reject(ErrDuplicateUser, i18n.T("auth.register_duplicate", username)), nil
		}
		return Result{}, fmt.Errorf("auth: insert %q: %w", username, err)
	}
	logging.Debugf("auth: registered %s with role %s", username, role)
	return Result{OK: true, Message: i18n.T("auth.register_success", username)}, nil
}

// Login looks the user up and verifies the password against the stored
// hash. Unknown users and wrong passwords are reported distinctly. When the
// store supports it, a hash made with outdated parameters is replaced after
// a successful login.
func (s *Service) Login(ctx context.Context, username, password string) (Result, error) {
	username = strings.TrimSpace(username)
	u, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return Result{}, fmt.Errorf("auth: lookup %q: %w", username, err)
	}
	if u == nil {
		return reject(ErrNotFound, i18n.T("auth.login_not_found", username)), nil
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		return reject(ErrInvalidCredentials, i18n.T("auth.login_wrong_password")), nil
	}

	if up, ok := s.store.(PasswordUpdater); ok && s.hasher.NeedsRehash(u.PasswordHash) {
		s.rehash(ctx, up, username, password)
	}
	return Result{OK: true, Message: i18n.T("auth.login_success", username)}, nil
}

func (s *Service) rehash(ctx context.Context, up PasswordUpdater, username, password string) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		logging.Warnf("auth: rehash for %s skipped: %v", username, err)
		return
	}
	if err := up.UpdatePasswordHash(ctx, username, hash); err != nil {
		logging.Warnf("auth: rehash for %s not stored: %v", username, err)
		return
	}
	logging.Debugf("auth: upgraded password hash for %s", username)
}
