// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/i18n"
)

func newLoadCSVCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "load-csv <path> <table>",
		Short: "Append the rows of a CSV file to a table",
		Long: `Appends every row of a CSV file to one of the dataset tables
(cyber_incidents, datasets_metadata, it_tickets). The first line names the
columns. A table that does not exist yet is created from the header.`,
		Args: cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			d, err := st.svc.database(cmd.Context())
			if err != nil {
				return err
			}
			n, err := db.NewDatasetLoader(d).LoadCSV(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), true, i18n.T("dataset.cli_loaded", n, args[1]))
			return nil
		}),
	}
}

// setupTables are counted at the end of setup.
var setupTables = []string{"users", "cyber_incidents", "datasets_metadata", "it_tickets"}

func newSetupCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Prepare a fresh database",
		Long: `Creates the schema, migrates users from the legacy users file and
loads cyber_incidents.csv, datasets_metadata.csv and it_tickets.csv from
the data directory. Missing CSV files are skipped.`,
		Args: cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, i18n.T("setup.cli_step_schema"))
			d, err := st.svc.database(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", i18n.T("config.error_init_db"), err)
			}

			_, _ = fmt.Fprintln(out, i18n.T("setup.cli_step_users"))
			svc, err := st.svc.migrationService(ctx)
			if err != nil {
				return err
			}
			r, err := svc.Run(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(out, i18n.T("migrate.cli_summary", r.Migrated, r.Read, r.Existing, r.Skipped, r.Failed))

			_, _ = fmt.Fprintln(out, i18n.T("setup.cli_step_datasets"))
			loader := db.NewDatasetLoader(d)
			for _, table := range db.LoadableTables {
				path := filepath.Join(st.svc.cfg.Data.Dir, table+".csv")
				n, err := loader.LoadCSV(ctx, path, table)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, i18n.T("dataset.cli_loaded", n, table))
			}

			counts, err := db.NewReports(d).TableCounts(ctx, setupTables...)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []string{c.Table, itoa(c.Rows)})
			}
			renderTable(out, []string{i18n.T("setup.header_table"), i18n.T("setup.header_rows")}, rows)
			result(out, true, i18n.T("setup.cli_complete"))
			return nil
		}),
	}
}
