package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PluMGMK/ray1-unlocklang/internal/printer"
	"github.com/PluMGMK/ray1-unlocklang/pkg/unlocklang"
)

var (
	patchDryRun       bool
	patchBackupSuffix string
	patchNoSync       bool
)

func init() {
	cmd := newPatchCmd()
	cmd.Flags().BoolVarP(&patchDryRun, "dry-run", "n", false,
		"Find and check the patch location without writing anything")
	cmd.Flags().StringVarP(&patchBackupSuffix, "backup-suffix", "b", ".BAK",
		"Suffix for backup file")
	cmd.Flags().BoolVar(&patchNoSync, "no-sync", false,
		"Do not flush the backup and patched file to disk before closing")
	rootCmd.AddCommand(cmd)
}

func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <exe>",
		Short: "Patch the executable in place, keeping a backup",
		Long: `The patch command locates the language check in the executable's
entry object, checks it against every known byte layout and rewrites exactly
one of them.

The original file is first copied to <exe>.BAK. The backup is created
exclusively: if <exe>.BAK already exists nothing is written. The executable
is never modified when it is unrecognized or already patched, or when its
PMW1 container is compressed.`,
		Example: `  # Patch in place
  unlocklang patch RAYMAN.EXE

  # Check that the executable can be patched
  unlocklang patch --dry-run RAYMAN.EXE`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(args)
		},
	}
	return cmd
}

type patchOutput struct {
	Path       string `json:"path"`
	FileSize   int    `json:"file_size"`
	StubPages  uint16 `json:"stub_pages"`
	LastPage   uint16 `json:"stub_last_page"`
	StubLen    int    `json:"stub_len"`
	Rule       string `json:"rule"`
	Offset     int    `json:"offset"`
	Before     string `json:"before"`
	After      string `json:"after"`
	Address    string `json:"address,omitempty"`
	BackupPath string `json:"backup,omitempty"`
	DryRun     bool   `json:"dry_run"`
}

func runPatch(args []string) error {
	exePath := args[0]
	if !jsonOut {
		printInfo("Opening %s...\n", exePath)
	}

	res, err := unlocklang.Patch(exePath, &unlocklang.PatchOptions{
		DryRun:       patchDryRun,
		BackupSuffix: patchBackupSuffix,
		NoSync:       patchNoSync,
	})
	if res != nil && !jsonOut {
		printStub(res.Path, res.FileSize, res.Stub, res.StubLen)
	}
	if err != nil {
		printMatchError(err)
		if res != nil && res.BackupPath != "" {
			printError("the original is preserved in %s\n", res.BackupPath)
		}
		return fmt.Errorf("failed to patch %s: %w", exePath, err)
	}

	if jsonOut {
		out := patchOutput{
			Path:       res.Path,
			FileSize:   res.FileSize,
			StubPages:  res.Stub.TotalPages,
			LastPage:   res.Stub.BlocksUsedInLastPage,
			StubLen:    res.StubLen,
			Rule:       res.Rule,
			Offset:     res.Offset,
			Before:     printer.Hex(res.Before),
			After:      printer.Hex(res.After),
			BackupPath: res.BackupPath,
			DryRun:     res.DryRun,
		}
		if res.HasAddress {
			out.Address = formatAddress(res.Address)
		}
		return printJSON(out)
	}

	printInfo("Matched rule %q at entry object offset 0x%X.\n", res.Rule, res.Offset)
	printVerbose("  before: %s\n", printer.Window(res.Offset, res.Before))
	printVerbose("  after:  %s\n", printer.Window(res.Offset, res.After))
	if res.HasAddress {
		printVerbose("  operand: %s\n", formatAddress(res.Address))
	}
	if res.DryRun {
		printInfo("\nDry run: nothing was written.\n")
		return nil
	}
	printInfo("\nBackup written to %s\n", res.BackupPath)
	printInfo("Patching successful\n")
	return nil
}

func printStub(path string, size int, stub unlocklang.Stub, stubLen int) {
	printInfo("%s is %d bytes.\n", path, size)
	if stubLen == 0 {
		return
	}
	printInfo("It begins with an MZ executable, of %d half-KiB blocks.\n", stub.TotalPages)
	if stub.LastPageFull() {
		printInfo("Last block is fully used.\n")
	} else {
		printInfo("%d bytes used in last block.\n", stub.BlocksUsedInLastPage)
	}
	printInfo("Total MZ executable size is %d bytes.\n", stubLen)
}
