// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"testing"

	"github.com/toeirei/intelhub/internal/model"
)

func TestBackups_ExportImport(t *testing.T) {
	ctx := context.Background()

	var data *model.BackupData
	t.Run("source", func(t *testing.T) {
		src := newTestDB(t)
		users := NewUserStore(src)
		if _, err := users.Insert(ctx, "alice", "h-alice", "analyst"); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if _, err := users.Insert(ctx, "bob", "h-bob", model.DefaultRole); err != nil {
			t.Fatalf("Insert: %v", err)
		}
		if _, err := NewIncidentStore(src).Insert(ctx, sampleIncident("Phishing", "High", "Open")); err != nil {
			t.Fatalf("Insert incident: %v", err)
		}

		var err error
		data, err = NewBackups(src).Export(ctx)
		if err != nil {
			t.Fatalf("Export: %v", err)
		}
	})
	if data == nil || len(data.Users) != 2 || len(data.Incidents) != 1 || data.SchemaVersion != model.BackupSchemaVersion {
		t.Fatalf("unexpected export: %+v", data)
	}

	dst := newTestDB(t)
	if _, err := NewUserStore(dst).Insert(ctx, "bob", "other-hash", "admin"); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	b := NewBackups(dst)
	stats, err := b.Import(ctx, data)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if stats.Users != 1 || stats.Incidents != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	bob, _ := NewUserStore(dst).FindByUsername(ctx, "bob")
	if bob == nil || bob.PasswordHash != "other-hash" || bob.Role != "admin" {
		t.Fatalf("existing user must not be overwritten: %+v", bob)
	}
	alice, _ := NewUserStore(dst).FindByUsername(ctx, "alice")
	if alice == nil || alice.PasswordHash != "h-alice" || alice.Role != "analyst" {
		t.Fatalf("restored user mismatch: %+v", alice)
	}

	// Restoring twice is a no-op.
	stats, err = b.Import(ctx, data)
	if err != nil || stats.Users != 0 || stats.Incidents != 0 {
		t.Fatalf("second Import = %+v, %v", stats, err)
	}
}

func TestBackups_ImportRejectsUnknownVersion(t *testing.T) {
	b := NewBackups(newTestDB(t))
	if _, err := b.Import(context.Background(), &model.BackupData{SchemaVersion: 99}); err == nil {
		t.Fatalf("expected error for unknown schema version")
	}
}
