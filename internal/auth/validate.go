// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// UsernameRule selects how strictly usernames are checked.
type UsernameRule string

const (
	// UsernamePermissive rejects empty names, commas and out-of-range lengths.
	UsernamePermissive UsernameRule = "permissive"
	// UsernameStrict additionally requires ASCII letters and digits only.
	UsernameStrict UsernameRule = "strict"
)

// ParseUsernameRule maps a configuration value to a UsernameRule.
func ParseUsernameRule(s string) (UsernameRule, error) {
	switch UsernameRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", UsernamePermissive:
		return UsernamePermissive, nil
	case UsernameStrict:
		return UsernameStrict, nil
	}
	return "", fmt.Errorf("unknown username policy %q (want %q or %q)", s, UsernamePermissive, UsernameStrict)
}

// Policy is the single credential format policy of a deployment. The same
// Policy must be used for registration and for migration.
type Policy struct {
	Username    UsernameRule
	UsernameMin int
	UsernameMax int
	PasswordMin int
	// PasswordMax of zero disables the upper bound.
	PasswordMax int
}

// DefaultPolicy matches the rules the legacy users file was written under.
func DefaultPolicy() Policy {
	return Policy{
		Username:    UsernamePermissive,
		UsernameMin: 3,
		UsernameMax: 20,
		PasswordMin: 8,
		PasswordMax: 50,
	}
}

var validate = validator.New()

// ValidateUsername checks the trimmed username. It returns nil when the
// name is acceptable and a *ValidationError otherwise.
func (p Policy) ValidateUsername(username string) error {
	u := strings.TrimSpace(username)
	if u == "" {
		return &ValidationError{Field: "username", MessageID: "auth.username_empty"}
	}
	if strings.Contains(u, ",") {
		return &ValidationError{Field: "username", MessageID: "auth.username_comma"}
	}
	if strings.ContainsFunc(u, unicode.IsControl) {
		return &ValidationError{Field: "username", MessageID: "auth.username_control"}
	}
	n := utf8.RuneCountInString(u)
	if n < p.UsernameMin {
		return &ValidationError{Field: "username", MessageID: "auth.username_too_short", Args: []any{p.UsernameMin}}
	}
	if p.UsernameMax > 0 && n > p.UsernameMax {
		return &ValidationError{Field: "username", MessageID: "auth.username_too_long", Args: []any{p.UsernameMax}}
	}
	if p.Username == UsernameStrict {
		if err := validate.Var(u, "alphanum"); err != nil {
			return &ValidationError{Field: "username", MessageID: "auth.username_not_alphanumeric"}
		}
	}
	return nil
}

// ValidatePassword checks the password length in bytes. There are no
// character-class rules.
func (p Policy) ValidatePassword(password string) error {
	if len(password) < p.PasswordMin {
		return &ValidationError{Field: "password", MessageID: "auth.password_too_short", Args: []any{p.PasswordMin}}
	}
	if p.PasswordMax > 0 && len(password) > p.PasswordMax {
		return &ValidationError{Field: "password", MessageID: "auth.password_too_long", Args: []any{p.PasswordMax}}
	}
	return nil
}
