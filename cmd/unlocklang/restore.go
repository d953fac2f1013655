package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PluMGMK/ray1-unlocklang/pkg/unlocklang"
)

var (
	restoreBackupSuffix string
	restoreNoSync       bool
)

func init() {
	cmd := newRestoreCmd()
	cmd.Flags().StringVarP(&restoreBackupSuffix, "backup-suffix", "b", ".BAK",
		"Suffix of the backup to restore from")
	cmd.Flags().BoolVar(&restoreNoSync, "no-sync", false,
		"Do not flush the restored file to disk")
	rootCmd.AddCommand(cmd)
}

func newRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <exe>",
		Short: "Put the backup back in place of a patched executable",
		Long: `The restore command replaces the executable with the contents of
<exe>.BAK using a temporary file and an atomic rename. The backup is kept.

Example:
  unlocklang restore RAYMAN.EXE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRestore(args)
		},
	}
	return cmd
}

func runRestore(args []string) error {
	exePath := args[0]

	backup, err := unlocklang.Restore(exePath, &unlocklang.RestoreOptions{
		BackupSuffix: restoreBackupSuffix,
		NoSync:       restoreNoSync,
	})
	if err != nil {
		return fmt.Errorf("failed to restore %s: %w", exePath, err)
	}

	if jsonOut {
		return printJSON(map[string]string{"path": exePath, "backup": backup})
	}
	printInfo("Restored %s from %s\n", exePath, backup)
	return nil
}
