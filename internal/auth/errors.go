// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"errors"

	"github.com/toeirei/intelhub/internal/i18n"
)

// Rejection kinds carried in Result.Reason. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError describes why a username or password was rejected.
// Its message is localized through the i18n bundle.
type ValidationError struct {
	Field     string
	MessageID string
	Args      []any
}

func (e *ValidationError) Error() string {
	return i18n.T(e.MessageID, e.Args...)
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }
