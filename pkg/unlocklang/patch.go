package unlocklang

import (
	"github.com/PluMGMK/ray1-unlocklang/internal/engine"
	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
	"github.com/PluMGMK/ray1-unlocklang/internal/mmfile"
)

// PatchResult reports what Patch found and did.
type PatchResult struct {
	Path          string
	FileSize      int
	Stub          Stub
	StubLen       int
	ContainerSize int

	Rule       string
	Offset     int
	Before     []byte
	After      []byte
	Address    uint32
	HasAddress bool

	// BackupPath is set once the backup is complete, including when the
	// rewrite that follows it fails.
	BackupPath string
	DryRun     bool
}

// Patch corrects the executable at path in place. The stub region is kept
// byte for byte and followed by the re-serialized container. The original
// file is copied to the backup path before it is rewritten; if that copy
// cannot be made the executable is left untouched.
//
// A non-nil result may accompany an error, describing how far Patch got.
func Patch(path string, opts *PatchOptions) (*PatchResult, error) {
	if opts == nil {
		opts = &PatchOptions{}
	}

	// Owned copy: the stub slice aliases it and is written after the file
	// has been truncated.
	raw, err := mmfile.Load(path)
	if err != nil {
		return nil, err
	}
	res := &PatchResult{Path: path, FileSize: len(raw), DryRun: opts.DryRun}

	img, err := engine.Split(raw)
	if err != nil {
		return res, err
	}
	res.Stub = img.Header
	res.StubLen = len(img.Stub)
	logger.Info("stub parsed",
		"path", path, "pages", img.Header.TotalPages,
		"last_page", img.Header.BlocksUsedInLastPage, "stub_len", res.StubLen)

	run, err := engine.New(engine.Config{Table: opts.Table}).Run(img.Container)
	if err != nil {
		return res, err
	}
	res.Rule = run.Match.Rule.Name
	res.Offset = run.Match.Rule.Offset
	res.Before = run.Before
	res.After = run.After
	res.Address = run.Match.Address
	res.HasAddress = run.Match.HasAddress
	res.ContainerSize = len(run.Container)

	if opts.DryRun {
		logger.Info("dry run, nothing written", "path", path, "rule", res.Rule)
		return res, nil
	}

	b, err := newWriter(opts.BackupSuffix, opts.NoSync).Persist(path, raw, img.Stub, run.Container)
	if b != nil {
		res.BackupPath = b.Path()
	}
	if err != nil {
		return res, err
	}
	logger.Info("executable patched", "path", path, "rule", res.Rule, "backup", res.BackupPath)
	return res, nil
}
