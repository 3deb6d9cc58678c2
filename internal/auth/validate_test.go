// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/toeirei/intelhub/internal/i18n"
)

func TestValidateUsername_Permissive(t *testing.T) {
	i18n.Init("en")
	p := DefaultPolicy()

	cases := []struct {
		name    string
		in      string
		wantErr string
	}{
		{"length 3 accepted", "abc", ""},
		{"length 20 accepted", strings.Repeat("a", 20), ""},
		{"surrounding whitespace trimmed", "  abc  ", ""},
		{"underscore allowed", "test_user", ""},
		{"length 2 rejected", "ab", "Username must be at least 3 characters long."},
		{"length 21 rejected", strings.Repeat("a", 21), "Username must be at most 20 characters long."},
		{"empty rejected", "", "Username cannot be empty."},
		{"whitespace only rejected", "   ", "Username cannot be empty."},
		{"comma rejected", "al,ice", "Username cannot contain a comma."},
		{"line feed rejected", "ab\ncd", "Username cannot contain line breaks or control characters."},
		{"carriage return rejected", "ab\rcd", "Username cannot contain line breaks or control characters."},
		{"tab rejected", "ab\tcd", "Username cannot contain line breaks or control characters."},
		{"multibyte counted as characters", "äöü", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := p.ValidateUsername(c.in)
			if c.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateUsername(%q) = %v; want ok", c.in, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateUsername(%q) accepted; want %q", c.in, c.wantErr)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if err.Error() != c.wantErr {
				t.Fatalf("reason = %q; want %q", err.Error(), c.wantErr)
			}
		})
	}
}

func TestValidateUsername_Strict(t *testing.T) {
	i18n.Init("en")
	p := DefaultPolicy()
	p.Username = UsernameStrict

	for _, ok := range []string{"abc", "Alice99", "ABCDEFGHIJ0123456789"} {
		if err := p.ValidateUsername(ok); err != nil {
			t.Fatalf("strict policy rejected %q: %v", ok, err)
		}
	}
	for _, bad := range []string{"test_user", "äöü", "a b c", "bob!"} {
		err := p.ValidateUsername(bad)
		if err == nil {
			t.Fatalf("strict policy accepted %q", bad)
		}
		if err.Error() != "Username may contain only letters and digits." {
			t.Fatalf("unexpected reason for %q: %q", bad, err.Error())
		}
	}
	// Length is still reported before character class.
	if err := p.ValidateUsername("a_"); err == nil || !strings.Contains(err.Error(), "at least 3") {
		t.Fatalf("expected length reason, got %v", err)
	}
}

func TestValidatePassword(t *testing.T) {
	i18n.Init("en")
	p := DefaultPolicy()

	if err := p.ValidatePassword("12345678"); err != nil {
		t.Fatalf("8 characters should be accepted: %v", err)
	}
	if err := p.ValidatePassword(strings.Repeat("x", 50)); err != nil {
		t.Fatalf("50 characters should be accepted: %v", err)
	}
	err := p.ValidatePassword("1234567")
	if err == nil || err.Error() != "Password must be at least 8 characters long." {
		t.Fatalf("unexpected result for short password: %v", err)
	}
	err = p.ValidatePassword(strings.Repeat("x", 51))
	if err == nil || err.Error() != "Password must be at most 50 characters long." {
		t.Fatalf("unexpected result for long password: %v", err)
	}

	p.PasswordMax = 0
	if err := p.ValidatePassword(strings.Repeat("x", 500)); err != nil {
		t.Fatalf("PasswordMax=0 should disable the upper bound: %v", err)
	}
}

func TestParseUsernameRule(t *testing.T) {
	for in, want := range map[string]UsernameRule{
		"":           UsernamePermissive,
		"permissive": UsernamePermissive,
		" Strict ":   UsernameStrict,
	} {
		got, err := ParseUsernameRule(in)
		if err != nil || got != want {
			t.Fatalf("ParseUsernameRule(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseUsernameRule("lenient"); err == nil {
		t.Fatalf("expected error for unknown rule")
	}
}
