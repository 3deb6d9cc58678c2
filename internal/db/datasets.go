// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/uptrace/bun"
)

// Tables that LoadCSV accepts.
var LoadableTables = []string{"cyber_incidents", "datasets_metadata", "it_tickets"}

// ErrTableNotAllowed is returned by LoadCSV for tables outside LoadableTables.
var ErrTableNotAllowed = errors.New("table not allowed")

// DatasetLoader bulk-loads CSV files into tables.
type DatasetLoader struct {
	db *DB
}

// NewDatasetLoader returns a DatasetLoader backed by d.
func NewDatasetLoader(d *DB) *DatasetLoader {
	return &DatasetLoader{db: d}
}

// LoadCSV appends every record of the CSV file at path to table and returns
// the number of rows loaded. The first record is the header and names the
// columns. A table that does not exist yet is created with one TEXT column
// per header field. A missing file loads nothing and is not an error.
// Empty cells are stored as NULL.
func (l *DatasetLoader) LoadCSV(ctx context.Context, path, table string) (int, error) {
	if !slices.Contains(LoadableTables, table) {
		return 0, fmt.Errorf("%w: %s", ErrTableNotAllowed, table)
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			dbLogf("db: csv file %s not found, nothing loaded into %s", path, table)
			return 0, nil
		}
		return 0, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read csv header %s: %w", path, err)
	}
	columns, err := normalizeHeader(header)
	if err != nil {
		return 0, fmt.Errorf("csv %s: %w", path, err)
	}

	loaded := 0
	err = l.db.bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tableExists(ctx, tx, l.db.dbType, table)
		if err != nil {
			return storeErr("table exists", err)
		}
		if !exists {
			if _, err := ExecRaw(ctx, tx, createTableQuery(len(columns)), createTableArgs(table, columns)...); err != nil {
				return storeErr("create table "+table, err)
			}
			dbLogf("db: created table %s with %d text columns", table, len(columns))
		}

		query := insertQuery(len(columns))
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("read csv %s: %w", path, err)
			}
			if _, err := ExecRaw(ctx, tx, query, insertArgs(table, columns, rec)...); err != nil {
				return storeErr("insert into "+table, err)
			}
			loaded++
		}
	})
	if err != nil {
		return 0, err
	}
	dbLogf("db: loaded %d rows from %s into %s", loaded, path, table)
	return loaded, nil
}

func normalizeHeader(header []string) ([]string, error) {
	cols := make([]string, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		if h == "" {
			return nil, fmt.Errorf("empty column name at position %d", i+1)
		}
		if slices.Contains(cols, h) {
			return nil, fmt.Errorf("duplicate column name %q", h)
		}
		cols = append(cols, h)
	}
	return cols, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// createTableQuery renders CREATE TABLE ? (? TEXT, ...) for n columns.
func createTableQuery(n int) string {
	return "CREATE TABLE IF NOT EXISTS ? (" + strings.TrimSuffix(strings.Repeat("? TEXT, ", n), ", ") + ")"
}

func createTableArgs(table string, columns []string) []interface{} {
	args := make([]interface{}, 0, len(columns)+1)
	args = append(args, bun.Ident(table))
	for _, c := range columns {
		args = append(args, bun.Ident(c))
	}
	return args
}

func insertQuery(n int) string {
	return "INSERT INTO ? (" + placeholders(n) + ") VALUES (" + placeholders(n) + ")"
}

func insertArgs(table string, columns, rec []string) []interface{} {
	args := createTableArgs(table, columns)
	for _, v := range rec {
		if v == "" {
			args = append(args, nil)
			continue
		}
		args = append(args, v)
	}
	return args
}
