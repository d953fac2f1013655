// Package engine ties the stub split, the container view and the signature
// table together. It produces patched container bytes and never touches the
// filesystem.
package engine

import (
	"fmt"

	"github.com/PluMGMK/ray1-unlocklang/internal/buf"
	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
)

// Config selects the rule table and container reader. Zero values fall back
// to signature.Default() and ParsePMW1.
type Config struct {
	Table *signature.Table
	Parse ParseFunc
}

// Engine applies exactly one rule from its table to a container's entry object.
type Engine struct {
	table *signature.Table
	parse ParseFunc
}

// New creates an engine.
func New(cfg Config) *Engine {
	e := &Engine{table: cfg.Table, parse: cfg.Parse}
	if e.table == nil {
		e.table = signature.Default()
	}
	if e.parse == nil {
		e.parse = ParsePMW1
	}
	return e
}

// Result describes a successful run.
type Result struct {
	Match     signature.Match // the selected rule, evaluated before patching
	Before    []byte          // window contents before patching
	After     []byte          // window contents after patching
	Container []byte          // serialized container with the patched entry object
}

// Run parses embedded, selects the matching rule and returns the serialized,
// patched container. embedded is not modified. On any error no patched bytes
// are produced.
func (e *Engine) Run(embedded []byte) (*Result, error) {
	c, err := e.open(embedded)
	if err != nil {
		return nil, err
	}

	data, err := c.EntryObjectData()
	if err != nil {
		return nil, &Error{Op: "read", Err: fmt.Errorf("%w: %w", ErrContainerInvalid, err)}
	}

	m, err := e.table.Select(data)
	if err != nil {
		return nil, &Error{Op: "select", Err: err}
	}
	logger.Debug("rule selected",
		"rule", m.Rule.Name, "offset", m.Rule.Offset, "window", fmt.Sprintf("% x", m.Window))
	if m.HasAddress {
		logger.Info("operand decoded", "rule", m.Rule.Name, "address", fmt.Sprintf("0x%08X", m.Address))
	}

	fixed, err := m.Rule.Apply(m.Window)
	if err != nil {
		return nil, &Error{Op: "apply", Err: err}
	}

	off := m.Rule.Offset
	err = c.ReplaceEntryObjectData(func(cur []byte) []byte {
		out := buf.Clone(cur)
		copy(out[off:off+len(fixed)], fixed)
		return out
	})
	if err != nil {
		return nil, &Error{Op: "apply", Err: err}
	}

	if err := e.verify(c, m.Rule); err != nil {
		return nil, err
	}

	return &Result{
		Match:     m,
		Before:    buf.Clone(m.Window),
		After:     fixed,
		Container: c.Bytes(),
	}, nil
}

// Report is the read-only evaluation of every rule.
type Report struct {
	EntryObjectSize int
	Matches         []signature.Match
	Selected        *signature.Match // nil when Select fails
	SelectErr       error
}

// Inspect evaluates all rules against the entry object without modifying it.
// Signature failures are recorded in the report rather than returned.
func (e *Engine) Inspect(embedded []byte) (*Report, error) {
	c, err := e.open(embedded)
	if err != nil {
		return nil, err
	}
	data, err := c.EntryObjectData()
	if err != nil {
		return nil, &Error{Op: "read", Err: fmt.Errorf("%w: %w", ErrContainerInvalid, err)}
	}

	r := &Report{
		EntryObjectSize: len(data),
		Matches:         e.table.Evaluate(data),
	}
	m, err := e.table.Select(data)
	if err != nil {
		r.SelectErr = err
	} else {
		r.Selected = &m
	}
	return r, nil
}

func (e *Engine) open(embedded []byte) (Container, error) {
	c, err := e.parse(embedded)
	if err != nil {
		return nil, &Error{Op: "parse", Err: fmt.Errorf("%w: %w", ErrContainerInvalid, err)}
	}
	return c, nil
}

// verify re-reads the entry object and checks that the rule now sees its
// fixed form.
func (e *Engine) verify(c Container, r *signature.Rule) error {
	data, err := c.EntryObjectData()
	if err != nil {
		return &Error{Op: "verify", Err: err}
	}
	if st := r.Evaluate(data).State; st != signature.StatePatched {
		return &Error{Op: "verify", Err: fmt.Errorf("rule %q reads back as %s", r.Name, st)}
	}
	return nil
}
