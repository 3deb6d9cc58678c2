// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package model

import "errors"

var (
	// ErrDuplicate is returned when attempting to insert a record that already exists.
	ErrDuplicate = errors.New("duplicate record")

	// ErrStoreUnavailable is returned when the backing file or database
	// cannot be opened or read. No credential operation can proceed after it.
	ErrStoreUnavailable = errors.New("store unavailable")
)
