package safewrite

import "os"

// FlushMode controls how hard the writer pushes bytes to stable storage
// before closing a file.
type FlushMode int

const (
	// FlushAuto calls fdatasync (fsync on macOS) before close.
	FlushAuto FlushMode = iota
	// FlushNone skips the sync and relies on close alone.
	FlushNone
	// FlushFull also requests F_FULLFSYNC on macOS.
	FlushFull
)

func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushNone:
		return "none"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

func flush(f *os.File, mode FlushMode) error {
	if mode == FlushNone {
		return nil
	}
	return fdatasync(f, mode == FlushFull)
}
