// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"fmt"

	"github.com/toeirei/intelhub/internal/model"
	"github.com/uptrace/bun"
)

// ImportStats reports how many records a restore added.
type ImportStats struct {
	Users     int
	Incidents int
}

// Backups exports and restores the users and incidents tables.
type Backups struct {
	db *DB
}

// NewBackups returns a Backups backed by d.
func NewBackups(d *DB) *Backups {
	return &Backups{db: d}
}

// Export reads all users and incidents in id order.
func (b *Backups) Export(ctx context.Context) (*model.BackupData, error) {
	users, err := listUsers(ctx, b.db.bun)
	if err != nil {
		return nil, err
	}
	incidents, err := listIncidents(ctx, b.db.bun, "id ASC")
	if err != nil {
		return nil, err
	}
	return &model.BackupData{
		SchemaVersion: model.BackupSchemaVersion,
		Users:         users,
		Incidents:     incidents,
	}, nil
}

// Import merges a backup into the database without touching existing rows.
// Users are inserted when their username is free; incidents are appended
// unless an identical incident is already present. Everything happens in
// one transaction.
func (b *Backups) Import(ctx context.Context, data *model.BackupData) (ImportStats, error) {
	var stats ImportStats
	if data == nil {
		return stats, nil
	}
	if data.SchemaVersion != model.BackupSchemaVersion {
		return stats, fmt.Errorf("unsupported backup schema version %d (want %d)", data.SchemaVersion, model.BackupSchemaVersion)
	}

	err := b.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, u := range data.Users {
			role := u.Role
			if role == "" {
				role = model.DefaultRole
			}
			ok, err := insertUserIfAbsent(ctx, tx, b.db.dbType, u.Username, u.PasswordHash, role)
			if err != nil {
				return err
			}
			if ok {
				stats.Users++
			}
		}
		for _, inc := range data.Incidents {
			n, err := tx.NewSelect().Model((*IncidentModel)(nil)).
				Where("date = ?", inc.Date).
				Where("incident_type = ?", inc.IncidentType).
				Where("severity = ?", inc.Severity).
				Where("status = ?", inc.Status).
				Where("COALESCE(description, '') = ?", inc.Description).
				Count(ctx)
			if err != nil {
				return storeErr("match incident", err)
			}
			if n > 0 {
				continue
			}
			if _, err := insertIncident(ctx, tx, inc); err != nil {
				return err
			}
			stats.Incidents++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}
	dbLogf("db: restored %d users and %d incidents", stats.Users, stats.Incidents)
	return stats, nil
}
