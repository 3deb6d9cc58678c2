// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Intelhub using Cobra. It
// defines the root command, the shared flags and configuration loading.

package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/toeirei/intelhub/buildvars"
	"github.com/toeirei/intelhub/internal/config"
	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/logging"
)

// ErrRejected is returned by commands whose request was refused (failed
// login, invalid registration). The reason has already been printed.
var ErrRejected = errors.New("request rejected")

// rootState is shared by the root command and its subcommands for one
// execution.
type rootState struct {
	standalone bool
	svc        *services
}

func (st *rootState) setup(cmd *cobra.Command) error {
	path, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	cfg, err := config.LoadConfig[config.Config](cmd, defaults, path)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run: persist the defaults so there is a file to edit.
		if writeErr := config.WriteConfigFile(&cfg, false); writeErr != nil {
			logging.Warnf("could not write default config file: %v", writeErr)
		} else if p, perr := config.GetConfigPath(false); perr == nil {
			logging.Debugf("wrote default config to %s", p)
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Empty values in a user file fall back to the defaults.
	if cfg.Database.Type == "" {
		cfg.Database.Type = defaults["database.type"].(string)
	}
	if cfg.Database.Dsn == "" {
		cfg.Database.Dsn = defaults["database.dsn"].(string)
	}
	if cfg.Legacy.UsersFile == "" {
		cfg.Legacy.UsersFile = defaults["legacy.users_file"].(string)
	}
	if cfg.Data.Dir == "" {
		cfg.Data.Dir = defaults["data.dir"].(string)
	}
	if cfg.Language == "" {
		cfg.Language = defaults["language"].(string)
	}

	logging.SetDebug(cfg.Debug)
	i18n.Init(cfg.Language)

	svc, err := newServices(cfg)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	st.svc = svc
	return nil
}

// run wraps a command body so the database is closed when it returns.
func (st *rootState) run(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		defer st.svc.close()
		return fn(cmd, args)
	}
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// Execute runs the CLI entrypoint. The main package handles process exit.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd creates the root command with all subcommands. Each call
// returns an independent tree, which keeps tests isolated.
func NewRootCmd() *cobra.Command {
	st := &rootState{}

	cmd := &cobra.Command{
		Use:   "intelhub",
		Short: "Intelhub keeps user credentials and cyber incident records.",
		Long: `Intelhub stores user credentials in a relational database, migrates
users from the legacy users.txt file and keeps a register of cyber
incidents with a few aggregate reports.

Running without a subcommand starts the interactive menu.`,
		Version:       buildvars.VersionOrDefault("dev"),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.setup(cmd)
		},
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			return runMenu(cmd.Context(), st, p)
		}),
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file")
	pf.Bool("debug", false, "Enable debug logging")
	pf.String("language", "en", `Message language ("en", "de")`)
	pf.String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	pf.String("database.dsn", "DATA/intelligence_platform.db", "Database connection string (DSN)")
	pf.String("legacy.users_file", "DATA/users.txt", "Legacy users file")
	pf.String("data.dir", "DATA", "Directory with the CSV datasets")
	pf.BoolVar(&st.standalone, "standalone", false, "Register and log in against the legacy users file instead of the database")

	cmd.AddCommand(
		newRegisterCmd(st),
		newLoginCmd(st),
		newMigrateCmd(st),
		newUsersCmd(st),
		newIncidentCmd(st),
		newReportCmd(st),
		newLoadCSVCmd(st),
		newSetupCmd(st),
		newBackupCmd(st),
		newRestoreCmd(st),
		newMaintainCmd(st),
	)
	return cmd
}
