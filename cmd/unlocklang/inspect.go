package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PluMGMK/ray1-unlocklang/internal/printer"
	"github.com/PluMGMK/ray1-unlocklang/pkg/unlocklang"
)

func init() {
	rootCmd.AddCommand(newInspectCmd())
}

func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <exe>",
		Short: "Report how every known layout reads at the patch location",
		Long: `The inspect command maps the executable read-only, splits off the
MZ stub, reads the entry object and evaluates every rule against it. It shows
the bytes found at the patch location, the decoded operand and which rule
patch would apply. The file is never modified.

Example:
  unlocklang inspect RAYMAN.EXE
  unlocklang inspect RAYMAN.EXE --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args)
		},
	}
	return cmd
}

type inspectOutput struct {
	Path            string              `json:"path"`
	FileSize        int                 `json:"file_size"`
	StubLen         int                 `json:"stub_len"`
	ContainerSize   int                 `json:"container_size"`
	EntryObjectSize int                 `json:"entry_object_size"`
	Selected        string              `json:"selected,omitempty"`
	Status          string              `json:"status"`
	Matches         []printer.JSONMatch `json:"matches"`
}

func runInspect(args []string) error {
	exePath := args[0]
	printVerbose("Mapping %s\n", exePath)

	rep, err := unlocklang.Inspect(exePath, nil)
	if err != nil {
		return fmt.Errorf("failed to inspect %s: %w", exePath, err)
	}

	status := inspectStatus(rep.SelectErr)

	if jsonOut {
		out := inspectOutput{
			Path:            rep.Path,
			FileSize:        rep.FileSize,
			StubLen:         rep.StubLen,
			ContainerSize:   rep.ContainerSize,
			EntryObjectSize: rep.EntryObjectSize,
			Status:          status,
			Matches:         printer.JSONMatches(rep.Matches),
		}
		if rep.Selected != nil {
			out.Selected = rep.Selected.Rule.Name
		}
		return printJSON(out)
	}

	printStub(rep.Path, rep.FileSize, rep.Stub, rep.StubLen)
	printInfo("Embedded container is %d bytes, entry object %d bytes.\n\n",
		rep.ContainerSize, rep.EntryObjectSize)
	if !quiet {
		printer.New(stdout, printer.Options{}).Matches(rep.Matches)
	}
	printInfo("\nStatus: %s\n", status)
	if rep.Selected != nil {
		printInfo("patch would apply rule %q\n", rep.Selected.Rule.Name)
	}
	return nil
}

func inspectStatus(err error) string {
	switch {
	case err == nil:
		return "patchable"
	case errors.Is(err, unlocklang.ErrAlreadyPatched):
		return "already patched"
	case errors.Is(err, unlocklang.ErrUnrecognized):
		return "unrecognized"
	case errors.Is(err, unlocklang.ErrAmbiguousRules):
		return "ambiguous rule set"
	default:
		return err.Error()
	}
}
