//go:build !unix

package mmfile

import (
	"io"
	"os"
)

// mapFile reads the file into memory where mmap is not wired up. The
// executables handled here are a few hundred KiB.
func mapFile(f *os.File, size int) ([]byte, func() error, error) {
	data := make([]byte, size)
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, nil, err
	}
	return data, nil, nil
}
