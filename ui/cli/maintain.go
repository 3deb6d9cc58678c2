// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/i18n"
)

func newMaintainCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: "Run database maintenance tasks",
		Long: `Performs database-specific maintenance (VACUUM, OPTIMIZE, integrity
checks). Safe to run any time; may take a while on large databases.`,
		Args: cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			d, err := st.svc.database(cmd.Context())
			if err != nil {
				return err
			}
			if err := d.RunMaintenance(cmd.Context()); err != nil {
				return err
			}
			result(cmd.OutOrStdout(), true, i18n.T("maintenance.cli_success"))
			return nil
		}),
	}
}
