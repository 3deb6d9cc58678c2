// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/intelhub/internal/auth"
	"github.com/toeirei/intelhub/internal/config"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/legacy"
	"github.com/toeirei/intelhub/internal/migrate"
	"github.com/toeirei/intelhub/internal/security"
)

// services holds everything a command needs. The database is opened lazily
// so commands that never touch it (the standalone auth variant) work
// without one.
type services struct {
	cfg    config.Config
	policy auth.Policy
	hasher *security.PasswordHasher
	legacy *legacy.FileStore

	db *db.DB
}

func newServices(cfg config.Config) (*services, error) {
	policy, err := policyFromConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}
	hasher, err := hasherFromConfig(cfg.Auth)
	if err != nil {
		return nil, err
	}
	return &services{
		cfg:    cfg,
		policy: policy,
		hasher: hasher,
		legacy: legacy.NewFileStore(cfg.Legacy.UsersFile),
	}, nil
}

// database opens the configured database on first use.
func (s *services) database(ctx context.Context) (*db.DB, error) {
	if s.db != nil {
		return s.db, nil
	}
	d, err := db.Open(ctx, db.Options{Type: s.cfg.Database.Type, DSN: s.cfg.Database.Dsn})
	if err != nil {
		return nil, err
	}
	s.db = d
	return d, nil
}

func (s *services) close() {
	if s != nil && s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
}

// authService returns the auth service over the relational store, or over
// the legacy file when standalone is set.
func (s *services) authService(ctx context.Context, standalone bool) (*auth.Service, error) {
	if standalone {
		return auth.NewService(s.legacy, s.hasher, s.policy), nil
	}
	d, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return auth.NewService(db.NewUserStore(d), s.hasher, s.policy), nil
}

func (s *services) migrationService(ctx context.Context) (*migrate.Service, error) {
	d, err := s.database(ctx)
	if err != nil {
		return nil, err
	}
	return migrate.NewService(s.legacy, db.NewUserStore(d), s.policy), nil
}

func policyFromConfig(c config.AuthConfig) (auth.Policy, error) {
	p := auth.DefaultPolicy()
	rule, err := auth.ParseUsernameRule(c.UsernamePolicy)
	if err != nil {
		return p, err
	}
	p.Username = rule
	if c.PasswordMin > 0 {
		p.PasswordMin = c.PasswordMin
	}
	if c.PasswordMax < 0 {
		return p, fmt.Errorf("auth.password_max must not be negative")
	}
	p.PasswordMax = c.PasswordMax
	if p.PasswordMax > 0 && p.PasswordMax < p.PasswordMin {
		return p, fmt.Errorf("auth.password_max (%d) is below auth.password_min (%d)", p.PasswordMax, p.PasswordMin)
	}
	return p, nil
}

func hasherFromConfig(c config.AuthConfig) (*security.PasswordHasher, error) {
	opts := security.DefaultOptions()
	switch strings.ToLower(strings.TrimSpace(c.Hasher)) {
	case "", string(security.AlgorithmBcrypt):
		opts.Algorithm = security.AlgorithmBcrypt
	case string(security.AlgorithmArgon2id):
		opts.Algorithm = security.AlgorithmArgon2id
	default:
		return nil, fmt.Errorf("unknown auth.hasher %q (want bcrypt or argon2id)", c.Hasher)
	}
	if c.BcryptCost > 0 {
		opts.BcryptCost = c.BcryptCost
	}
	return security.NewPasswordHasher(opts)
}
