// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"

	"github.com/toeirei/intelhub/internal/model"
	"github.com/uptrace/bun"
)

// HighSeverity is the severity value the high-severity report filters on.
const HighSeverity = "High"

// Reports runs the aggregate incident queries.
type Reports struct {
	db *DB
}

// NewReports returns a Reports backed by d.
func NewReports(d *DB) *Reports {
	return &Reports{db: d}
}

// IncidentsByType counts incidents per type, most frequent first.
func (r *Reports) IncidentsByType(ctx context.Context) ([]model.TypeCount, error) {
	var out []model.TypeCount
	err := r.db.bun.NewSelect().
		TableExpr("cyber_incidents").
		ColumnExpr("incident_type").
		ColumnExpr("COUNT(*) AS count").
		Group("incident_type").
		OrderExpr("count DESC, incident_type ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, storeErr("incidents by type", err)
	}
	return out, nil
}

// HighSeverityByStatus counts high-severity incidents per status.
func (r *Reports) HighSeverityByStatus(ctx context.Context) ([]model.StatusCount, error) {
	var out []model.StatusCount
	err := r.db.bun.NewSelect().
		TableExpr("cyber_incidents").
		ColumnExpr("status").
		ColumnExpr("COUNT(*) AS count").
		Where("severity = ?", HighSeverity).
		Group("status").
		OrderExpr("count DESC, status ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, storeErr("high severity by status", err)
	}
	return out, nil
}

// TypesWithMoreThan returns the incident types with more than minCount
// incidents.
func (r *Reports) TypesWithMoreThan(ctx context.Context, minCount int) ([]model.TypeCount, error) {
	var out []model.TypeCount
	err := r.db.bun.NewSelect().
		TableExpr("cyber_incidents").
		ColumnExpr("incident_type").
		ColumnExpr("COUNT(*) AS count").
		Group("incident_type").
		Having("COUNT(*) > ?", minCount).
		OrderExpr("count DESC, incident_type ASC").
		Scan(ctx, &out)
	if err != nil {
		return nil, storeErr("incident types with many cases", err)
	}
	return out, nil
}

// TableCounts returns the row count of each table. Tables that do not exist
// report zero rows.
func (r *Reports) TableCounts(ctx context.Context, tables ...string) ([]model.TableCount, error) {
	out := make([]model.TableCount, 0, len(tables))
	for _, t := range tables {
		ok, err := tableExists(ctx, r.db.bun, r.db.dbType, t)
		if err != nil {
			return nil, storeErr("table exists", err)
		}
		tc := model.TableCount{Table: t}
		if ok {
			n, err := r.db.bun.NewSelect().TableExpr("?", bun.Ident(t)).Count(ctx)
			if err != nil {
				return nil, storeErr("count "+t, err)
			}
			tc.Rows = n
		}
		out = append(out, tc)
	}
	return out, nil
}

func tableExists(ctx context.Context, idb bun.IDB, dbType, table string) (bool, error) {
	var query string
	switch dbType {
	case TypePostgres:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = ?"
	case TypeMySQL:
		query = "SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?"
	default:
		query = "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?"
	}
	var n int
	if err := QueryRawInto(ctx, idb, &n, query, table); err != nil {
		return false, err
	}
	return n > 0, nil
}
