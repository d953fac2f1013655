package signature

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrecognized indicates no rule's layout is present at the patch window.
	ErrUnrecognized = errors.New("signature: unrecognized pattern")
	// ErrAlreadyPatched indicates a rule found its corrected layout in place.
	ErrAlreadyPatched = errors.New("signature: already patched")
	// ErrAmbiguousRules indicates more than one rule claims the same unpatched
	// input. It is a defect in the curated rule set, not in the image.
	ErrAmbiguousRules = errors.New("signature: ambiguous rule set")
)

// MatchError reports why Table.Select refused the data. Matches holds the
// evaluation of every registered rule, so the caller can show expected
// patterns next to the bytes found.
type MatchError struct {
	Err     error // ErrUnrecognized, ErrAlreadyPatched or ErrAmbiguousRules
	Matches []Match
}

// Error implements the error interface.
func (e *MatchError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Err.Error())
	switch {
	case errors.Is(e.Err, ErrUnrecognized):
		for _, m := range e.Matches {
			if m.Window == nil {
				fmt.Fprintf(&sb, "; %s: window 0x%X+%d out of range", m.Rule.Name, m.Rule.Offset, m.Rule.Len())
				continue
			}
			fmt.Fprintf(&sb, "; %s at 0x%X: expected [%s], found [% x]",
				m.Rule.Name, m.Rule.Offset, m.Rule.Pattern(), m.Window)
		}
	default:
		for _, m := range e.Matches {
			if m.State == StateNoMatch {
				continue
			}
			fmt.Fprintf(&sb, "; %s at 0x%X is %s [% x]", m.Rule.Name, m.Rule.Offset, m.State, m.Window)
		}
	}
	return sb.String()
}

// Unwrap returns the sentinel error.
func (e *MatchError) Unwrap() error {
	return e.Err
}
