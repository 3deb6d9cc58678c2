// Copyright (c) 2026 ToeiRei
// Intelhub - credential and incident record keeping
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
	"github.com/toeirei/intelhub/internal/db"
	"github.com/toeirei/intelhub/internal/i18n"
	"github.com/toeirei/intelhub/internal/model"
)

func newBackupCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "backup [output-file]",
		Short: "Create a compressed (zstd) JSON backup of users and incidents",
		Long: `Dumps the users and cyber_incidents tables into a single
Zstandard-compressed JSON file.

If an output file is specified, '.zst' will be appended to the name if it's not already present.
If no output file is specified, a default filename 'intelhub-backup-YYYY-MM-DD.json.zst' is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			var outputFile string
			if len(args) == 0 {
				outputFile = fmt.Sprintf("intelhub-backup-%s.json.zst", time.Now().Format("2006-01-02"))
			} else {
				outputFile = args[0]
				if !strings.HasSuffix(outputFile, ".zst") {
					outputFile += ".zst"
				}
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, i18n.T("backup.cli_starting"))
			d, err := st.svc.database(cmd.Context())
			if err != nil {
				return err
			}
			data, err := db.NewBackups(d).Export(cmd.Context())
			if err != nil {
				return err
			}
			if err := writeCompressedBackup(outputFile, data); err != nil {
				return err
			}
			result(out, true, i18n.T("backup.cli_success", outputFile))
			return nil
		}),
	}
}

func newRestoreCmd(st *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup-file>",
		Short: "Restore users and incidents from a backup",
		Long: `Reads a backup written by 'intelhub backup' and adds its records to the
database. Users that already exist are kept as they are and incidents that
are already present are not duplicated, so nothing is overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: st.run(func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, i18n.T("restore.cli_starting", args[0]))
			data, err := readCompressedBackup(args[0])
			if err != nil {
				return err
			}
			d, err := st.svc.database(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := db.NewBackups(d).Import(cmd.Context(), data)
			if err != nil {
				return err
			}
			result(out, true, i18n.T("restore.cli_success", stats.Users, stats.Incidents))
			return nil
		}),
	}
}

// readCompressedBackup handles reading and decoding a zstd-compressed JSON backup file.
func readCompressedBackup(filename string) (*model.BackupData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdReader, err := zstd.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zstdReader.Close()

	var backupData model.BackupData
	if err := json.NewDecoder(zstdReader).Decode(&backupData); err != nil {
		return nil, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	return &backupData, nil
}

// writeCompressedBackup streams the JSON encoding straight into a zstd
// writer. The file holds password hashes and is created with mode 0600.
func writeCompressedBackup(filename string, data *model.BackupData) error {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zstdWriter, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}

	encoder := json.NewEncoder(zstdWriter)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		_ = zstdWriter.Close()
		return fmt.Errorf("could not encode json to zstd writer: %w", err)
	}
	if err := zstdWriter.Close(); err != nil {
		return fmt.Errorf("could not finish zstd stream: %w", err)
	}
	return nil
}
