// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/i18n"
)

func newMigrateCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Migrate users from the legacy users file into the database",
		Long: `Copies every well-formed line of the legacy users file into the users
table with the role "user". Usernames that already exist are left alone,
so the command can be run any number of times.`,
		Args: cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := st.svc.legacy.Path()
			if !st.svc.legacy.Exists() {
				_, _ = fmt.Fprintln(out, i18n.T("migrate.cli_no_file", path))
				return nil
			}
			_, _ = fmt.Fprintln(out, i18n.T("migrate.cli_starting", path))

			svc, err := st.svc.migrationService(cmd.Context())
			if err != nil {
				return err
			}
			r, err := svc.Run(cmd.Context())
			if err != nil {
				return err
			}
			result(out, r.Failed == 0, i18n.T("migrate.cli_summary", r.Migrated, r.Read, r.Existing, r.Skipped, r.Failed))
			return nil
		}),
	}
}
