// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package model

// BackupSchemaVersion is written into every backup.
const BackupSchemaVersion = 1

// BackupData is a container for all data exported for a backup.
type BackupData struct {
	// SchemaVersion helps in handling migrations during restore.
	SchemaVersion int `json:"schema_version"`

	Users     []User     `json:"users"`
	Incidents []Incident `json:"incidents"`
}
