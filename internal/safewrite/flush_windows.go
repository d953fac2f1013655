//go:build windows

package safewrite

import (
	"os"

	"golang.org/x/sys/windows"
)

// fdatasync performs file descriptor sync using FlushFileBuffers.
// The fullfsync parameter is ignored on Windows.
func fdatasync(f *os.File, _ bool) error {
	return windows.FlushFileBuffers(windows.Handle(f.Fd()))
}
