// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/i18n"
)

// registerFlow prompts for a username and a confirmed password, checking
// each answer against the policy as soon as it is entered, then registers
// the user. It reports whether the user was created; the error is reserved
// for input and store failures.
func registerFlow(ctx context.Context, st *rootState, p *prompter, username, role string) (bool, error) {
	out := p.out
	policy := st.svc.policy

	if username == "" {
		var err error
		if username, err = p.Line(i18n.T("register.prompt_username")); err != nil {
			return false, err
		}
	}
	if err := policy.ValidateUsername(username); err != nil {
		result(out, false, i18n.T("cli.error", err))
		return false, nil
	}

	password, err := p.Password(i18n.T("register.prompt_password"))
	if err != nil {
		return false, err
	}
	defer password.Zero()
	if err := policy.ValidatePassword(password.Reveal()); err != nil {
		result(out, false, i18n.T("cli.error", err))
		return false, nil
	}

	confirm, err := p.Password(i18n.T("register.prompt_confirm"))
	if err != nil {
		return false, err
	}
	defer confirm.Zero()
	if !password.Equal(confirm) {
		result(out, false, i18n.T("register.password_mismatch"))
		return false, nil
	}

	svc, err := st.svc.authService(ctx, st.standalone)
	if err != nil {
		return false, err
	}
	res, err := svc.Register(ctx, username, password.Reveal(), role)
	if err != nil {
		return false, err
	}
	result(out, res.OK, res.Message)
	return res.OK, nil
}

// loginFlow prompts for credentials and reports whether they were accepted.
func loginFlow(ctx context.Context, st *rootState, p *prompter, username string) (bool, error) {
	if username == "" {
		var err error
		if username, err = p.Line(i18n.T("login.prompt_username")); err != nil {
			return false, err
		}
	}
	password, err := p.Password(i18n.T("login.prompt_password"))
	if err != nil {
		return false, err
	}
	defer password.Zero()

	svc, err := st.svc.authService(ctx, st.standalone)
	if err != nil {
		return false, err
	}
	res, err := svc.Login(ctx, username, password.Reveal())
	if err != nil {
		return false, err
	}
	result(p.out, res.OK, res.Message)
	return res.OK, nil
}

func newRegisterCmd(st *rootState) *cobra.Command {
	var username, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		Long: `Prompts for a password (twice) and registers a new user. The username
is prompted for unless --username is given.`,
		Args: cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			ok, err := registerFlow(cmd.Context(), st, p, username, role)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRejected
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to register")
	cmd.Flags().StringVar(&role, "role", "", "Role of the new user (default \"user\")")
	return cmd
}

func newLoginCmd(st *rootState) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a username and password",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			ok, err := loginFlow(cmd.Context(), st, p, username)
			if err != nil {
				return err
			}
			if !ok {
				return ErrRejected
			}
			return nil
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username to log in as")
	return cmd
}

// errorf prints a localized error line and returns ErrRejected.
func errorf(cmd *cobra.Command, messageID string, args ...any) error {
	result(cmd.OutOrStdout(), false, i18n.T(messageID, args...))
	return fmt.Errorf("%w: %s", ErrRejected, messageID)
}
