package unlocklang

import (
	"github.com/PluMGMK/ray1-unlocklang/internal/engine"
	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
	"github.com/PluMGMK/ray1-unlocklang/internal/mmfile"
)

// InspectResult is a read-only report on an executable.
type InspectResult struct {
	Path            string
	FileSize        int
	Stub            Stub
	StubLen         int
	ContainerSize   int
	EntryObjectSize int

	// Matches holds one evaluation per rule, in table order.
	Matches []Match

	// Selected is the rule Patch would apply, or nil. SelectErr then says
	// why (unrecognized, already patched, ambiguous).
	Selected  *Match
	SelectErr error
}

// Inspect evaluates every rule against the executable at path. The file is
// mapped read-only and never modified. Signature outcomes are reported in
// the result; only format and I/O failures are returned as errors.
func Inspect(path string, opts *InspectOptions) (*InspectResult, error) {
	if opts == nil {
		opts = &InspectOptions{}
	}

	m, err := mmfile.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := m.Close(); cerr != nil {
			logger.Warn("unmap failed", "path", path, "err", cerr)
		}
	}()
	raw := m.Bytes()

	res := &InspectResult{Path: path, FileSize: len(raw)}
	img, err := engine.Split(raw)
	if err != nil {
		return res, err
	}
	res.Stub = img.Header
	res.StubLen = len(img.Stub)
	res.ContainerSize = len(img.Container)

	rep, err := engine.New(engine.Config{Table: opts.Table}).Inspect(img.Container)
	if err != nil {
		return res, err
	}
	res.EntryObjectSize = rep.EntryObjectSize
	res.Matches = rep.Matches
	res.Selected = rep.Selected
	res.SelectErr = rep.SelectErr
	return res, nil
}
