package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
	"github.com/PluMGMK/ray1-unlocklang/internal/printer"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

// Output streams, swapped out by tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "unlocklang",
	Short: "Unlock the language menu in a DOS extender executable",
	Long: `unlocklang patches the check that hides the language selection in
a protected-mode DOS game executable. The original file is always copied to a
backup (EXE.BAK) before it is rewritten, and nothing is written when the
executable is not recognized.

Only the uncompressed PMW1 container layout is supported; executables whose
objects are stored compressed are rejected without being modified.`,
	Version:       "0.1.0",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Enabled: verbose && !quiet,
			Level:   slog.LevelDebug,
			Writer:  stderr,
			JSON:    jsonOut,
		})
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if code := run(os.Args[1:]); code != 0 {
		os.Exit(code)
	}
}

// run executes the command line in args and returns the exit status.
func run(args []string) int {
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		return 1
	}
	return 0
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func formatAddress(a uint32) string {
	return fmt.Sprintf("0x%08X", a)
}

// printMatchError writes the expected and found windows carried by a
// signature failure. JSON goes to stdout, text to stderr.
func printMatchError(err error) {
	if jsonOut {
		printer.New(stdout, printer.Options{JSON: true}).MatchError(err)
		return
	}
	printer.New(stderr, printer.Options{}).MatchError(err)
}
