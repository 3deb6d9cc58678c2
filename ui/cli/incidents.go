// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/model"
)

func newIncidentCmd(st *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "incident",
		Short: "Manage cyber incident records",
	}
	cmd.AddCommand(
		newIncidentAddCmd(st),
		newIncidentListCmd(st),
		newIncidentShowCmd(st),
		newIncidentStatusCmd(st),
		newIncidentDeleteCmd(st),
	)
	return cmd
}

func incidentStore(cmd *cobra.Command, st *rootState) (*db.IncidentStore, error) {
	d, err := st.svc.database(cmd.Context())
	if err != nil {
		return nil, err
	}
	return db.NewIncidentStore(d), nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid incident id %q", s)
	}
	return id, nil
}

func newIncidentAddCmd(st *rootState) *cobra.Command {
	var inc model.Incident
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a new incident",
		Example: `  intelhub incident add --type Phishing --severity High --status Open \
    --description "Credential harvesting mail" --reported-by alice`,
		Args: cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			if inc.Date == "" {
				inc.Date = time.Now().Format("2006-01-02")
			}
			if err := db.ValidateIncident(inc); err != nil {
				return err
			}
			s, err := incidentStore(cmd, st)
			if err != nil {
				return err
			}
			id, err := s.Insert(cmd.Context(), inc)
			if err != nil {
				return err
			}
			result(cmd.OutOrStdout(), true, i18n.T("incident.cli_created", id))
			return nil
		}),
	}
	f := cmd.Flags()
	f.StringVar(&inc.Date, "date", "", "Incident date (default today, YYYY-MM-DD)")
	f.StringVar(&inc.IncidentType, "type", "", "Incident type, e.g. Phishing")
	f.StringVar(&inc.Severity, "severity", "", "Severity (Low, Medium, High, Critical)")
	f.StringVar(&inc.Status, "status", "Open", "Status")
	f.StringVar(&inc.Description, "description", "", "Free-text description")
	f.StringVar(&inc.ReportedBy, "reported-by", "", "Username of the reporter")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("severity")
	return cmd
}

func incidentRow(inc model.Incident) []string {
	return []string{itoa(inc.ID), inc.Date, inc.IncidentType, inc.Severity, inc.Status, inc.ReportedBy}
}

func incidentHeaders() []string {
	return []string{
		i18n.T("incident.header_id"),
		i18n.T("incident.header_date"),
		i18n.T("incident.header_type"),
		i18n.T("incident.header_severity"),
		i18n.T("incident.header_status"),
		i18n.T("incident.header_reported_by"),
	}
}

func newIncidentListCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List incidents, newest first",
		Args:  cobra.NoArgs,
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			s, err := incidentStore(cmd, st)
			if err != nil {
				return err
			}
			list, err := s.List(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(list))
			for _, inc := range list {
				rows = append(rows, incidentRow(inc))
			}
			out := cmd.OutOrStdout()
			renderTable(out, incidentHeaders(), rows)
			_, _ = fmt.Fprintln(out, i18n.T("incident.cli_total", len(list)))
			return nil
		}),
	}
}

func newIncidentShowCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single incident",
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := incidentStore(cmd, st)
			if err != nil {
				return err
			}
			inc, err := s.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if inc == nil {
				return errorf(cmd, "incident.cli_not_found", id)
			}
			out := cmd.OutOrStdout()
			renderTable(out, incidentHeaders(), [][]string{incidentRow(*inc)})
			if inc.Description != "" {
				_, _ = fmt.Fprintln(out, inc.Description)
			}
			return nil
		}),
	}
}

func newIncidentStatusCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the status of an incident",
		Args:  cobra.ExactArgs(2),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := incidentStore(cmd, st)
			if err != nil {
				return err
			}
			n, err := s.UpdateStatus(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			if n == 0 {
				return errorf(cmd, "incident.cli_not_found", id)
			}
			result(cmd.OutOrStdout(), true, i18n.T("incident.cli_updated", id, args[1]))
			return nil
		}),
	}
}

func newIncidentDeleteCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an incident",
		Args:  cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			s, err := incidentStore(cmd, st)
			if err != nil {
				return err
			}
			n, err := s.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if n == 0 {
				return errorf(cmd, "incident.cli_not_found", id)
			}
			result(cmd.OutOrStdout(), true, i18n.T("incident.cli_deleted", id))
			return nil
		}),
	}
}
