package unlocklang

import (
	"github.com/PluMGMK/ray1-unlocklang/internal/engine"
	"github.com/PluMGMK/ray1-unlocklang/internal/format"
	"github.com/PluMGMK/ray1-unlocklang/internal/safewrite"
	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
)

// PatchOptions controls Patch.
type PatchOptions struct {
	// DryRun runs the whole pipeline but writes nothing, not even the backup.
	DryRun bool

	// BackupSuffix is appended to the executable path to name the backup.
	// Default: ".BAK"
	BackupSuffix string

	// NoSync skips flushing the backup and the rewritten file to stable
	// storage before they are closed.
	NoSync bool

	// Table overrides the rule set. If nil, DefaultTable() is used.
	Table *Table
}

// InspectOptions controls Inspect.
type InspectOptions struct {
	// Table overrides the rule set. If nil, DefaultTable() is used.
	Table *Table
}

// RestoreOptions controls Restore.
type RestoreOptions struct {
	// BackupSuffix names the backup to restore from.
	// Default: ".BAK"
	BackupSuffix string

	// NoSync skips flushing the restored file.
	NoSync bool
}

// DiffOptions controls Diff.
type DiffOptions struct {
	// BackupSuffix names the backup to compare against.
	// Default: ".BAK"
	BackupSuffix string

	// DeltaPath, when set, receives a bsdiff delta that turns the backup
	// into the current file.
	DeltaPath string
}

// Table is an ordered, validated set of rules (re-exported for convenience).
type Table = signature.Table

// Rule describes one byte layout at the patch location.
type Rule = signature.Rule

// Match is the evaluation of one rule.
type Match = signature.Match

// State classifies a match.
type State = signature.State

// Rule states (re-exported for convenience).
const (
	StateNoMatch   = signature.StateNoMatch
	StateUnpatched = signature.StateUnpatched
	StatePatched   = signature.StatePatched
)

// Stub is the parsed DOS stub header.
type Stub = format.Stub

// Sentinel errors (re-exported for errors.Is).
var (
	ErrTruncated           = format.ErrTruncated
	ErrNotMZ               = format.ErrSignatureMismatch
	ErrBadStubLength       = format.ErrBadStubLength
	ErrNoEmbeddedContainer = format.ErrNoEmbeddedContainer
	ErrContainerInvalid    = engine.ErrContainerInvalid
	ErrUnrecognized        = signature.ErrUnrecognized
	ErrAlreadyPatched      = signature.ErrAlreadyPatched
	ErrAmbiguousRules      = signature.ErrAmbiguousRules
	ErrBackupExists        = safewrite.ErrBackupExists
)

// DefaultTable returns the built-in rule set.
func DefaultTable() *Table {
	return signature.Default()
}

func newWriter(suffix string, noSync bool) *safewrite.Writer {
	w := safewrite.NewWriter()
	w.SetBackupSuffix(suffix)
	if noSync {
		w.SetFlushMode(safewrite.FlushNone)
	}
	return w
}
