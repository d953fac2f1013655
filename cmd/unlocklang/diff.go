package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PluMGMK/ray1-unlocklang/pkg/unlocklang"
)

var (
	diffBackupSuffix string
	diffOutput       string
)

func init() {
	cmd := newDiffCmd()
	cmd.Flags().StringVarP(&diffBackupSuffix, "backup-suffix", "b", ".BAK",
		"Suffix of the backup to compare against")
	cmd.Flags().StringVarP(&diffOutput, "output", "o", "",
		"Write a bsdiff delta from the backup to the executable")
	rootCmd.AddCommand(cmd)
}

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <exe>",
		Short: "Show which bytes differ from the backup",
		Long: `The diff command compares the executable with <exe>.BAK and lists
the changed byte ranges as file offsets. With --output it also writes a
bsdiff delta that reproduces the change on an identical copy of the original.

Example:
  unlocklang diff RAYMAN.EXE
  unlocklang diff RAYMAN.EXE -o unlock.bsdiff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args)
		},
	}
	return cmd
}

type diffOutputDoc struct {
	Path       string             `json:"path"`
	Backup     string             `json:"backup"`
	FileSize   int                `json:"file_size"`
	BackupSize int                `json:"backup_size"`
	Ranges     []unlocklang.Range `json:"ranges"`
	Delta      string             `json:"delta,omitempty"`
	DeltaSize  int                `json:"delta_size,omitempty"`
}

func runDiff(args []string) error {
	exePath := args[0]

	res, err := unlocklang.Diff(exePath, &unlocklang.DiffOptions{
		BackupSuffix: diffBackupSuffix,
		DeltaPath:    diffOutput,
	})
	if err != nil {
		return fmt.Errorf("failed to diff %s: %w", exePath, err)
	}

	if jsonOut {
		ranges := res.Ranges
		if ranges == nil {
			ranges = []unlocklang.Range{}
		}
		return printJSON(diffOutputDoc{
			Path:       res.Path,
			Backup:     res.BackupPath,
			FileSize:   res.FileSize,
			BackupSize: res.BackupSize,
			Ranges:     ranges,
			Delta:      res.DeltaPath,
			DeltaSize:  res.DeltaSize,
		})
	}

	printInfo("Comparing %s (%d bytes) with %s (%d bytes)\n",
		res.Path, res.FileSize, res.BackupPath, res.BackupSize)
	if res.Identical() {
		printInfo("Files are identical.\n")
	}
	for _, r := range res.Ranges {
		printInfo("  0x%08X  %d byte(s)\n", r.Off, r.Len)
	}
	if res.DeltaPath != "" {
		printInfo("Wrote %d-byte delta to %s\n", res.DeltaSize, res.DeltaPath)
	}
	return nil
}
