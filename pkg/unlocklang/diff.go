package unlocklang

import (
	"fmt"

	"github.com/PluMGMK/ray1-unlocklang/internal/delta"
	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
	"github.com/PluMGMK/ray1-unlocklang/internal/mmfile"
)

// Range is a run of differing bytes at a file offset.
type Range = delta.Range

// DiffResult lists how the executable differs from its backup.
type DiffResult struct {
	Path       string
	BackupPath string
	BackupSize int
	FileSize   int
	Ranges     []Range

	// DeltaPath and DeltaSize are set when a delta was written.
	DeltaPath string
	DeltaSize int
}

// Identical reports whether the executable matches its backup.
func (r *DiffResult) Identical() bool {
	return len(r.Ranges) == 0
}

// Diff compares the executable at path with its backup. With
// DiffOptions.DeltaPath set it also writes a bsdiff delta from the backup
// to the current file.
func Diff(path string, opts *DiffOptions) (*DiffResult, error) {
	if opts == nil {
		opts = &DiffOptions{}
	}
	w := newWriter(opts.BackupSuffix, false)
	res := &DiffResult{Path: path, BackupPath: w.BackupPath(path)}

	base, err := mmfile.Load(res.BackupPath)
	if err != nil {
		return nil, fmt.Errorf("backup: %w", err)
	}
	cur, err := mmfile.Load(path)
	if err != nil {
		return nil, err
	}
	res.BackupSize = len(base)
	res.FileSize = len(cur)
	res.Ranges = delta.Changed(base, cur)
	logger.Debug("compared with backup", "path", path, "ranges", len(res.Ranges))

	if opts.DeltaPath == "" {
		return res, nil
	}
	patch, err := delta.Compute(base, cur)
	if err != nil {
		return res, err
	}
	if err := w.WriteAtomic(opts.DeltaPath, patch); err != nil {
		return res, fmt.Errorf("writing delta: %w", err)
	}
	res.DeltaPath = opts.DeltaPath
	res.DeltaSize = len(patch)
	return res, nil
}
