// Package mmfile loads executable images, either as an owned in-memory copy
// or as a read-only memory mapping for inspection.
package mmfile

import (
	"fmt"
	"os"
)

// Load reads the whole file into a freshly allocated buffer that the caller
// owns. Use it whenever the file may be rewritten while the bytes are still
// needed.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Mapping is a read-only view of a file. Its bytes are invalid after Close
// and must not be modified.
type Mapping struct {
	path    string
	data    []byte
	release func() error
}

// Open maps the file at path read-only. Platforms without mmap get an
// in-memory copy behind the same interface.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close() // the mapping outlives the descriptor

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()
	if size > int64(^uint(0)>>1) {
		return nil, fmt.Errorf("mmfile: %s too large to map (%d bytes)", path, size)
	}

	m := &Mapping{path: path}
	if size == 0 {
		m.data = []byte{}
		return m, nil
	}
	m.data, m.release, err = mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmfile: %s: %w", path, err)
	}
	return m, nil
}

// Path returns the mapped file's path.
func (m *Mapping) Path() string { return m.path }

// Bytes returns the mapped contents.
func (m *Mapping) Bytes() []byte { return m.data }

// Len returns the file size.
func (m *Mapping) Len() int { return len(m.data) }

// Close releases the mapping. Calling it again is a no-op.
func (m *Mapping) Close() error {
	release := m.release
	m.data, m.release = nil, nil
	if release == nil {
		return nil
	}
	return release()
}
