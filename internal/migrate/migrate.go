// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package migrate copies credentials from the legacy users file into the
// relational users table. A run is idempotent: usernames already present
// are left alone, so running it again migrates nothing.
package migrate

import (
	"context"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/toeirei/intelhub/internal/auth"
	"github.com/toeirei/intelhub/internal/logging"
	"github.com/toeirei/intelhub/internal/model"
)

// Source is the legacy side of a migration.
type Source interface {
	Exists() bool
	// Lines yields every line, malformed ones included.
	Lines() iter.Seq2[model.LegacyCredential, error]
}

// Target is the relational side of a migration.
type Target interface {
	InsertIfAbsent(ctx context.Context, username, passwordHash, role string) (bool, error)
}

// Report summarizes one migration run. Read counts every line of the file;
// each line ends up in exactly one of the other counters.
type Report struct {
	RunID    uuid.UUID
	Read     int
	Migrated int
	Existing int
	Skipped  int
	Failed   int
}

// Service runs migrations from a Source into a Target.
type Service struct {
	legacy Source
	users  Target
	policy auth.Policy
}

// NewService wires a Service. Usernames are checked against policy, the
// same policy used for registration.
func NewService(legacy Source, users Target, policy auth.Policy) *Service {
	return &Service{legacy: legacy, users: users, policy: policy}
}

// Migrate runs a migration and returns the number of newly inserted users.
func (s *Service) Migrate(ctx context.Context) (int, error) {
	r, err := s.Run(ctx)
	return r.Migrated, err
}

// Run migrates every well-formed legacy line whose username passes the
// policy, with the default role. When the legacy file does not exist it
// returns an empty report without touching the target. Insert failures are
// logged and counted; only a failure to read the legacy file is returned,
// together with the partial report.
func (s *Service) Run(ctx context.Context) (Report, error) {
	r := Report{RunID: uuid.New()}
	if !s.legacy.Exists() {
		logging.Infof("migrate[%s]: no legacy users file, nothing to do", r.RunID)
		return r, nil
	}

	for c, err := range s.legacy.Lines() {
		if err != nil {
			return r, fmt.Errorf("migrate: read legacy users: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return r, err
		}
		r.Read++

		if !c.Valid() {
			r.Skipped++
			logging.Debugf("migrate[%s]: line %d malformed, skipped", r.RunID, c.Line)
			continue
		}
		if err := s.policy.ValidateUsername(c.Username); err != nil {
			r.Skipped++
			logging.Warnf("migrate[%s]: line %d user %q skipped: %v", r.RunID, c.Line, c.Username, err)
			continue
		}

		inserted, err := s.users.InsertIfAbsent(ctx, c.Username, c.PasswordHash, model.DefaultRole)
		switch {
		case err != nil:
			r.Failed++
			logging.Errorf("migrate[%s]: line %d user %q failed: %v", r.RunID, c.Line, c.Username, err)
		case inserted:
			r.Migrated++
			logging.Debugf("migrate[%s]: line %d user %q migrated", r.RunID, c.Line, c.Username)
		default:
			r.Existing++
		}
	}

	logging.Infof("migrate[%s]: read=%d migrated=%d existing=%d skipped=%d failed=%d",
		r.RunID, r.Read, r.Migrated, r.Existing, r.Skipped, r.Failed)
	return r, nil
}
