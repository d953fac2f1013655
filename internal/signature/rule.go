package signature

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/PluMGMK/ray1-unlocklang/internal/buf"
)

// State is the outcome of evaluating one Rule against entry object data.
type State int

const (
	StateNoMatch   State = iota // window does not have this rule's layout
	StateUnpatched              // every replace field holds its unpatched form
	StatePatched                // every replace field holds its fixed form
)

func (s State) String() string {
	switch s {
	case StateNoMatch:
		return "no match"
	case StateUnpatched:
		return "unpatched"
	case StatePatched:
		return "patched"
	default:
		return "unknown"
	}
}

// Rule describes one historical byte layout of the patch window: where it
// lives, which bytes identify it, and how it is corrected. Rules are
// immutable once registered in a Table.
type Rule struct {
	Name        string
	Description string
	Offset      int
	Fields      []Field
}

// Len returns the width of the rule's window.
func (r *Rule) Len() int {
	n := 0
	for _, f := range r.Fields {
		n += f.Len()
	}
	return n
}

// End returns the offset one past the rule's window.
func (r *Rule) End() int { return r.Offset + r.Len() }

// Validate checks that the rule is well formed.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return errors.New("rule has no name")
	}
	if r.Offset < 0 {
		return fmt.Errorf("rule %q: negative offset %d", r.Name, r.Offset)
	}
	if len(r.Fields) == 0 {
		return fmt.Errorf("rule %q has no fields", r.Name)
	}
	replaces := 0
	for _, f := range r.Fields {
		if err := f.validate(); err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}
		if f.Kind == FieldReplace {
			replaces++
		}
	}
	if replaces == 0 {
		return fmt.Errorf("rule %q rewrites nothing", r.Name)
	}
	return nil
}

// Pattern renders the unpatched window as hex, with ?? for decode-only bytes.
func (r *Rule) Pattern() string { return r.render(false) }

// FixedPattern renders the patched window as hex, with ?? for decode-only bytes.
func (r *Rule) FixedPattern() string { return r.render(true) }

func (r *Rule) render(fixed bool) string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = f.pattern(fixed)
	}
	return strings.Join(parts, " ")
}

// canonical returns the unpatched window with decode-only bytes zeroed.
func (r *Rule) canonical() []byte {
	out := make([]byte, 0, r.Len())
	for _, f := range r.Fields {
		if f.Kind == FieldAddress {
			out = append(out, make([]byte, AddressSize)...)
			continue
		}
		out = append(out, f.Want...)
	}
	return out
}

// Match is the result of evaluating a Rule against entry object data.
type Match struct {
	Rule       *Rule
	State      State
	Window     []byte // copy of the rule's window; nil when it lies outside the data
	Address    uint32
	HasAddress bool
}

// Evaluate classifies data against the rule's window. Address fields are
// decoded whenever the window is in range, regardless of the outcome.
func (r *Rule) Evaluate(data []byte) Match {
	m := Match{Rule: r, State: StateNoMatch}
	window, ok := buf.Slice(data, r.Offset, r.Len())
	if !ok {
		return m
	}
	m.Window = buf.Clone(window)

	unpatched, patched, literalsOK := true, true, true
	pos := 0
	for _, f := range r.Fields {
		seg := window[pos : pos+f.Len()]
		pos += f.Len()
		switch f.Kind {
		case FieldLiteral:
			if !bytes.Equal(seg, f.Want) {
				literalsOK = false
			}
		case FieldReplace:
			unpatched = unpatched && bytes.Equal(seg, f.Want)
			patched = patched && bytes.Equal(seg, f.Fixed)
		case FieldAddress:
			m.Address = buf.U32LE(seg)
			m.HasAddress = true
		}
	}

	switch {
	case !literalsOK:
	case unpatched:
		m.State = StateUnpatched
	case patched:
		m.State = StatePatched
	}
	return m
}

// Apply returns the corrected form of window. Only replace fields change;
// literal and address bytes are copied through. window must hold this rule's
// unpatched layout.
func (r *Rule) Apply(window []byte) ([]byte, error) {
	if len(window) != r.Len() {
		return nil, fmt.Errorf("rule %q: window is %d bytes, want %d", r.Name, len(window), r.Len())
	}
	local := *r
	local.Offset = 0
	if st := local.Evaluate(window).State; st != StateUnpatched {
		return nil, fmt.Errorf("rule %q: window is %s", r.Name, st)
	}
	out := buf.Clone(window)
	pos := 0
	for _, f := range r.Fields {
		if f.Kind == FieldReplace {
			copy(out[pos:], f.Fixed)
		}
		pos += f.Len()
	}
	return out, nil
}
