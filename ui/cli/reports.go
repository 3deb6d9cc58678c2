// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/model"
)

func newReportCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Aggregate reports over the incident register",
	}

	reports := func(cmd *cobra.Command) (*db.Reports, error) {
		d, err := st.svc.database(cmd.Context())
		if err != nil {
			return nil, err
		}
		return db.NewReports(d), nil
	}

	byType := &cobra.Command{
		Use:   "by-type",
		Short: "Count incidents per type",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			r, err := reports(cmd)
			if err != nil {
				return err
			}
			counts, err := r.IncidentsByType(cmd.Context())
			if err != nil {
				return err
			}
			printTypeCounts(cmd, counts)
			return nil
		}),
	}

	highSeverity := &cobra.Command{
		Use:   "high-severity",
		Short: "Count high severity incidents per status",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			r, err := reports(cmd)
			if err != nil {
				return err
			}
			counts, err := r.HighSeverityByStatus(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(counts) == 0 {
				_, _ = fmt.Fprintln(out, i18n.T("report.cli_empty"))
				return nil
			}
			rows := make([][]string, 0, len(counts))
			for _, c := range counts {
				rows = append(rows, []string{c.Status, itoa(c.Count)})
			}
			renderTable(out, []string{i18n.T("report.header_status"), i18n.T("report.header_count")}, rows)
			return nil
		}),
	}

	var minCount int
	frequent := &cobra.Command{
		Use:   "frequent",
		Short: "Incident types with more than --min cases",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			r, err := reports(cmd)
			if err != nil {
				return err
			}
			counts, err := r.TypesWithMoreThan(cmd.Context(), minCount)
			if err != nil {
				return err
			}
			printTypeCounts(cmd, counts)
			return nil
		}),
	}
	frequent.Flags().IntVar(&minCount, "min", 5, "Only show types with more cases than this")

	cmd.AddCommand(byType, highSeverity, frequent)
	return cmd
}

func printTypeCounts(cmd *cobra.Command, counts []model.TypeCount) {
	out := cmd.OutOrStdout()
	if len(counts) == 0 {
		_, _ = fmt.Fprintln(out, i18n.T("report.cli_empty"))
		return
	}
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.IncidentType, itoa(c.Count)})
	}
	renderTable(out, []string{i18n.T("report.header_type"), i18n.T("report.header_count")}, rows)
}
