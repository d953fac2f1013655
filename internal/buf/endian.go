// Package buf contains bounds-checked slicing and endian-safe decoding
// helpers shared by the image parsers.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// PutU16LE writes v at b[off:off+2]. It reports false when the range is out of bounds.
func PutU16LE(b []byte, off int, v uint16) bool {
	dst, ok := Slice(b, off, 2)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint16(dst, v)
	return true
}

// PutU32LE writes v at b[off:off+4]. It reports false when the range is out of bounds.
func PutU32LE(b []byte, off int, v uint32) bool {
	dst, ok := Slice(b, off, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(dst, v)
	return true
}
