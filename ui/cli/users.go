// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/i18n"
)

func newUsersCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List the users stored in the database",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			d, err := st.svc.database(cmd.Context())
			if err != nil {
				return err
			}
			users, err := db.NewUserStore(d).List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{itoa(u.ID), u.Username, u.Role})
			}
			out := cmd.OutOrStdout()
			renderTable(out, []string{
				i18n.T("users.header_id"),
				i18n.T("users.header_username"),
				i18n.T("users.header_role"),
			}, rows)
			_, _ = fmt.Fprintln(out, i18n.T("users.cli_total", len(users)))
			return nil
		}),
	}
}
