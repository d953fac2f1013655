// Package printer renders inspection reports, patch results and signature
// diagnostics as text or JSON.
package printer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
)

// Options controls output format.
type Options struct {
	JSON bool
}

// Printer writes reports to w.
type Printer struct {
	w    io.Writer
	opts Options
}

// New creates a printer.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) json(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// JSONMatch is one rule evaluation in JSON form.
type JSONMatch struct {
	Rule     string `json:"rule"`
	Offset   int    `json:"offset"`
	State    string `json:"state"`
	Expected string `json:"expected"`
	Fixed    string `json:"fixed"`
	Found    string `json:"found,omitempty"`
	Address  string `json:"address,omitempty"`
}

// JSONMatches converts rule evaluations for JSON output.
func JSONMatches(ms []signature.Match) []JSONMatch {
	out := make([]JSONMatch, len(ms))
	for i, m := range ms {
		out[i] = toJSONMatch(m)
	}
	return out
}

func toJSONMatch(m signature.Match) JSONMatch {
	jm := JSONMatch{
		Rule:     m.Rule.Name,
		Offset:   m.Rule.Offset,
		State:    m.State.String(),
		Expected: m.Rule.Pattern(),
		Fixed:    m.Rule.FixedPattern(),
	}
	if m.Window != nil {
		jm.Found = Hex(m.Window)
	}
	if m.HasAddress {
		jm.Address = fmt.Sprintf("0x%08X", m.Address)
	}
	return jm
}

// Matches writes one block per rule evaluation: expected and fixed patterns,
// the bytes found, and the decoded operand when the rule has one.
func (p *Printer) Matches(ms []signature.Match) {
	for _, m := range ms {
		r := m.Rule
		p.printf("  Rule %s (%s): %s\n", r.Name, r.Description, m.State)
		p.printf("    expected: %s\n", r.Pattern())
		p.printf("    fixed:    %s\n", r.FixedPattern())
		if m.Window == nil {
			p.printf("    found:    window 0x%X+%d lies outside the entry object\n", r.Offset, r.Len())
		} else {
			p.printf("    found:    %s\n", Window(r.Offset, m.Window))
		}
		if m.HasAddress {
			p.printf("    operand:  0x%08X\n", m.Address)
		}
	}
}

// MatchError writes the per-rule detail carried by a *signature.MatchError.
// It reports false when err carries no such detail.
func (p *Printer) MatchError(err error) bool {
	var me *signature.MatchError
	if !errors.As(err, &me) {
		return false
	}
	if p.opts.JSON {
		_ = p.json(struct {
			Error   string      `json:"error"`
			Matches []JSONMatch `json:"matches"`
		}{me.Err.Error(), JSONMatches(me.Matches)})
		return true
	}
	p.Matches(me.Matches)
	return true
}
