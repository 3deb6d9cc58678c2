// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/toeirei/intelhub/internal/model"
	"github.com/uptrace/bun"
)

// ErrInvalidRecord is returned when a record fails field validation before
// it reaches the database.
var ErrInvalidRecord = errors.New("invalid record")

var validate = validator.New()

// IncidentModel maps the `cyber_incidents` table.
type IncidentModel struct {
	bun.BaseModel `bun:"table:cyber_incidents"`
	ID            int64          `bun:"id,pk,autoincrement"`
	Date          string         `bun:"date"`
	IncidentType  string         `bun:"incident_type"`
	Severity      string         `bun:"severity"`
	Status        string         `bun:"status"`
	Description   sql.NullString `bun:"description"`
	ReportedBy    sql.NullString `bun:"reported_by"`
}

func incidentModelToModel(m IncidentModel) model.Incident {
	return model.Incident{
		ID:           m.ID,
		Date:         m.Date,
		IncidentType: m.IncidentType,
		Severity:     m.Severity,
		Status:       m.Status,
		Description:  m.Description.String,
		ReportedBy:   m.ReportedBy.String,
	}
}

func incidentToModel(inc model.Incident) *IncidentModel {
	return &IncidentModel{
		Date:         inc.Date,
		IncidentType: inc.IncidentType,
		Severity:     inc.Severity,
		Status:       inc.Status,
		Description:  sql.NullString{String: inc.Description, Valid: true},
		ReportedBy:   sql.NullString{String: inc.ReportedBy, Valid: inc.ReportedBy != ""},
	}
}

// ValidateIncident checks the required incident fields.
func ValidateIncident(inc model.Incident) error {
	if err := validate.Struct(inc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("%w: %s is %s", ErrInvalidRecord, verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// IncidentStore provides CRUD over cyber incidents.
type IncidentStore struct {
	db *DB
}

// NewIncidentStore returns an IncidentStore backed by d.
func NewIncidentStore(d *DB) *IncidentStore {
	return &IncidentStore{db: d}
}

// Insert stores a new incident and returns its id.
func (s *IncidentStore) Insert(ctx context.Context, inc model.Incident) (int64, error) {
	return insertIncident(ctx, s.db.bun, inc)
}

func insertIncident(ctx context.Context, idb bun.IDB, inc model.Incident) (int64, error) {
	if err := ValidateIncident(inc); err != nil {
		return 0, err
	}
	m := incidentToModel(inc)
	if _, err := idb.NewInsert().Model(m).Exec(ctx); err != nil {
		return 0, storeErr("insert incident", err)
	}
	return m.ID, nil
}

// List returns all incidents, newest first.
func (s *IncidentStore) List(ctx context.Context) ([]model.Incident, error) {
	return listIncidents(ctx, s.db.bun, "id DESC")
}

func listIncidents(ctx context.Context, idb bun.IDB, order string) ([]model.Incident, error) {
	var ms []IncidentModel
	if err := idb.NewSelect().Model(&ms).Order(order).Scan(ctx); err != nil {
		return nil, storeErr("list incidents", err)
	}
	out := make([]model.Incident, 0, len(ms))
	for _, m := range ms {
		out = append(out, incidentModelToModel(m))
	}
	return out, nil
}

// Get returns the incident with id, or (nil, nil).
func (s *IncidentStore) Get(ctx context.Context, id int64) (*model.Incident, error) {
	var m IncidentModel
	err := s.db.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, storeErr("get incident", err)
	}
	inc := incidentModelToModel(m)
	return &inc, nil
}

// UpdateStatus changes the status of an incident and returns the number of
// rows updated.
func (s *IncidentStore) UpdateStatus(ctx context.Context, id int64, status string) (int64, error) {
	if err := validate.Var(status, "required"); err != nil {
		return 0, fmt.Errorf("%w: status is required", ErrInvalidRecord)
	}
	res, err := s.db.bun.NewUpdate().Model((*IncidentModel)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return 0, storeErr("update incident status", err)
	}
	return rowsAffected(res), nil
}

// Delete removes an incident and returns the number of rows deleted.
func (s *IncidentStore) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := s.db.bun.NewDelete().Model((*IncidentModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return 0, storeErr("delete incident", err)
	}
	return rowsAffected(res), nil
}
