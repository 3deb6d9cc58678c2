// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model holds the plain data types shared by the stores, services
// and the CLI.
package model

import "fmt"

// DefaultRole is assigned to users created without an explicit role.
const DefaultRole = "user"

// User is a single credential record. ID is zero for records that only
// exist in the legacy flat file.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"`
	Role         string `json:"role"`
}

// String returns the username and role, never the hash.
func (u User) String() string {
	return fmt.Sprintf("%s (%s)", u.Username, u.Role)
}

// LegacyCredential is one well-formed line of the legacy users file.
// Line is the 1-based line number it was read from.
type LegacyCredential struct {
	Line         int
	Username     string
	PasswordHash string
}

// Valid reports whether the line carried both fields.
func (c LegacyCredential) Valid() bool {
	return c.Username != "" && c.PasswordHash != ""
}

// Incident is a cyber incident record.
type Incident struct {
	ID           int64  `json:"id"`
	Date         string `json:"date" validate:"required"`
	IncidentType string `json:"incident_type" validate:"required"`
	Severity     string `json:"severity" validate:"required"`
	Status       string `json:"status" validate:"required"`
	Description  string `json:"description"`
	ReportedBy   string `json:"reported_by,omitempty"`
}

// TypeCount is a report row grouping incidents by type.
type TypeCount struct {
	IncidentType string
	Count        int
}

// StatusCount is a report row grouping incidents by status.
type StatusCount struct {
	Status string
	Count  int
}

// TableCount is the number of rows stored in a table.
type TableCount struct {
	Table string
	Rows  int
}
