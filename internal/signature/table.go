package signature

import (
	"fmt"
	"sync"
)

// Table is an ordered, immutable registry of rules. A valid table never has
// two rules that both accept the same unpatched input.
type Table struct {
	rules []*Rule
}

// NewTable validates rules and checks that their canonical unpatched windows
// are mutually exclusive.
func NewTable(rules ...*Rule) (*Table, error) {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r == nil {
			return nil, fmt.Errorf("signature: nil rule")
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("signature: %w", err)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("signature: duplicate rule %q", r.Name)
		}
		seen[r.Name] = true
	}

	for i, a := range rules {
		for j, b := range rules {
			if i == j {
				continue
			}
			// Lay a's unpatched window down and see whether b claims it too.
			scratch := make([]byte, max(a.End(), b.End()))
			copy(scratch[a.Offset:], a.canonical())
			if b.Evaluate(scratch).State == StateUnpatched {
				return nil, fmt.Errorf("%w: %q and %q both accept [%s]",
					ErrAmbiguousRules, a.Name, b.Name, a.Pattern())
			}
		}
	}

	return &Table{rules: append([]*Rule(nil), rules...)}, nil
}

// MustTable is like NewTable but panics on error. It is meant for
// package-level rule sets.
func MustTable(rules ...*Rule) *Table {
	t, err := NewTable(rules...)
	if err != nil {
		panic(err)
	}
	return t
}

// Rules returns the registered rules in order.
func (t *Table) Rules() []*Rule {
	return append([]*Rule(nil), t.rules...)
}

// Evaluate runs every rule against data, in registration order.
func (t *Table) Evaluate(data []byte) []Match {
	out := make([]Match, len(t.rules))
	for i, r := range t.rules {
		out[i] = r.Evaluate(data)
	}
	return out
}

// Select picks the single rule whose unpatched layout is present in data.
//
// Precedence:
//  1. nothing unpatched or patched: ErrUnrecognized
//  2. any rule patched: ErrAlreadyPatched, even if another rule is unpatched
//  3. more than one rule unpatched: ErrAmbiguousRules
//
// All failures are returned as *MatchError.
func (t *Table) Select(data []byte) (Match, error) {
	matches := t.Evaluate(data)

	var unpatched []Match
	patched := false
	for _, m := range matches {
		switch m.State {
		case StateUnpatched:
			unpatched = append(unpatched, m)
		case StatePatched:
			patched = true
		}
	}

	switch {
	case len(unpatched) == 0 && !patched:
		return Match{}, &MatchError{Err: ErrUnrecognized, Matches: matches}
	case patched:
		return Match{}, &MatchError{Err: ErrAlreadyPatched, Matches: matches}
	case len(unpatched) > 1:
		return Match{}, &MatchError{Err: ErrAmbiguousRules, Matches: matches}
	}
	return unpatched[0], nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table of known language-patch layouts.
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = MustTable(Wide, Narrow)
	})
	return defaultTable
}
