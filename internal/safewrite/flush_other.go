//go:build !linux && !freebsd && !darwin && !windows

package safewrite

import "os"

func fdatasync(f *os.File, _ bool) error {
	return f.Sync()
}
