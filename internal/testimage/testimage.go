// Package testimage builds synthetic stub + container executables for tests.
package testimage

import (
	"github.com/PluMGMK/ray1-unlocklang/internal/buf"
	"github.com/PluMGMK/ray1-unlocklang/internal/format"
	"github.com/PluMGMK/ray1-unlocklang/internal/pmw1"
	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
)

// Windows as they appear at signature.PatchOffset.
var (
	WideUnpatched   = []byte{0x30, 0xff, 0x31, 0xd2, 0x88, 0x3d, 0x35, 0xfa, 0x03, 0x00}
	WidePatched     = []byte{0x90, 0x90, 0x90, 0x90, 0x8a, 0x15, 0x35, 0xfa, 0x03, 0x00}
	NarrowUnpatched = []byte{0x31, 0xd2, 0x30, 0xff, 0x88, 0x3d, 0x35, 0xfa, 0x03, 0x00}
	NarrowPatched   = []byte{0x31, 0xd2, 0x30, 0xff, 0x8a, 0x15, 0x35, 0xfa, 0x03, 0x00}
	Garbage         = []byte{0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc, 0xcc}
)

// Options tweaks the generated image.
type Options struct {
	StubPages    uint16 // default 2
	StubLastPage uint16 // default 0x90
	EntrySize    int    // default PatchOffset + 0x400
}

// EntryData returns entry object data with window at signature.PatchOffset
// (dropped when size is too small to reach it).
// The remaining bytes follow a fixed non-zero pattern.
func EntryData(window []byte, size int) []byte {
	if size == 0 {
		size = signature.PatchOffset + 0x400
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	if signature.PatchOffset < len(data) {
		copy(data[signature.PatchOffset:], window)
	}
	return data
}

// Stub returns a stub region of the requested geometry.
func Stub(pages, lastPage uint16) []byte {
	s := format.Stub{TotalPages: pages, BlocksUsedInLastPage: lastPage}
	b := make([]byte, s.Len())
	for i := range b {
		b[i] = byte(i)
	}
	copy(b, format.MZSignature)
	buf.PutU16LE(b, format.MZLastPageOffset, lastPage)
	buf.PutU16LE(b, format.MZTotalPagesOffset, pages)
	return b
}

// Container returns a serialized container whose first object is the entry
// object carrying window.
func Container(window []byte, entrySize int) []byte {
	exe, err := pmw1.New(pmw1.Header{
		Version:     0x010C,
		EntryObject: 1,
		EntryEIP:    0x100,
		StackObject: 2,
		StackESP:    0x4000,
	}, []*pmw1.Object{
		pmw1.NewObject(pmw1.ObjR|pmw1.ObjX|pmw1.Obj32Bit, 0, EntryData(window, entrySize)),
		pmw1.NewObject(pmw1.ObjR|pmw1.ObjW|pmw1.Obj32Bit, 0x4000, []byte("stack and data")),
	}, []byte{0x01, 0x00, 0x00, 0x00, 0x10, 0x20, 0x30, 0x40})
	if err != nil {
		panic(err)
	}
	return exe.Bytes()
}

// Build returns a complete image: stub followed by a container whose entry
// object carries window at signature.PatchOffset.
func Build(window []byte, opts Options) []byte {
	if opts.StubPages == 0 {
		opts.StubPages = 2
		if opts.StubLastPage == 0 {
			opts.StubLastPage = 0x90
		}
	}
	stub := Stub(opts.StubPages, opts.StubLastPage)
	return append(stub, Container(window, opts.EntrySize)...)
}
