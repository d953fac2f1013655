package pmw1

import (
	"bytes"
	"fmt"

	"github.com/PluMGMK/ray1-unlocklang/internal/buf"
)

// Header holds the decoded container header.
type Header struct {
	Version     uint16
	Flags       uint16
	EntryObject uint32 // 1-based
	EntryEIP    uint32
	StackObject uint32 // 1-based
	StackESP    uint32
}

// Compressed reports whether the object data is stored compressed.
func (h Header) Compressed() bool {
	return h.Flags&FlagCompressed != 0
}

// Object is one loadable region of the container. Its data is owned by the
// Exe and can only be changed through Exe.ReplaceEntryObjectData.
type Object struct {
	VirtualSize uint32
	Flags       ObjFlag
	RelocCount  uint32
	data        []byte
}

// NewObject returns an object holding a copy of data.
func NewObject(flags ObjFlag, virtualSize uint32, data []byte) *Object {
	if virtualSize < uint32(len(data)) {
		virtualSize = uint32(len(data))
	}
	return &Object{VirtualSize: virtualSize, Flags: flags, data: buf.Clone(data)}
}

// Len returns the stored data size in bytes.
func (o *Object) Len() int { return len(o.data) }

// Data returns a copy of the object's stored data.
func (o *Object) Data() []byte { return buf.Clone(o.data) }

// Exe is a parsed container. It owns copies of all object data, so the
// buffer it was parsed from may be released or overwritten afterwards.
type Exe struct {
	hdr      Header
	objects  []*Object
	trailer  []byte
	replaced bool
}

// New assembles a container from objects. hdr.EntryObject must name one of
// them.
func New(hdr Header, objects []*Object, trailer []byte) (*Exe, error) {
	if hdr.EntryObject == 0 || int(hdr.EntryObject) > len(objects) {
		return nil, fmt.Errorf("entry object %d of %d: %w", hdr.EntryObject, len(objects), ErrBadEntryObject)
	}
	if len(objects) > MaxObjects {
		return nil, fmt.Errorf("%d objects: %w", len(objects), ErrTooManyObjects)
	}
	return &Exe{hdr: hdr, objects: objects, trailer: buf.Clone(trailer)}, nil
}

// Parse decodes the container in b.
func Parse(b []byte) (*Exe, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("pmw1 header: %d bytes: %w", len(b), ErrTruncated)
	}
	if !bytes.Equal(b[SignatureOffset:SignatureSize], Signature) {
		return nil, fmt.Errorf("pmw1 header: found % x: %w", b[:SignatureSize], ErrSignatureMismatch)
	}
	hdr := Header{
		Version:     buf.U16LE(b[VersionOffset:]),
		Flags:       buf.U16LE(b[FlagsOffset:]),
		EntryObject: buf.U32LE(b[EntryObjectOffset:]),
		EntryEIP:    buf.U32LE(b[EntryEIPOffset:]),
		StackObject: buf.U32LE(b[StackObjectOffset:]),
		StackESP:    buf.U32LE(b[StackESPOffset:]),
	}
	tableOff := int(buf.U32LE(b[ObjectTableOffset:]))
	count := int(buf.U32LE(b[ObjectCountOffset:]))
	if count > MaxObjects {
		return nil, fmt.Errorf("object table: %d objects: %w", count, ErrTooManyObjects)
	}

	end := HeaderSize
	tableEnd, err := buf.CheckRange(len(b), tableOff, count*ObjectEntrySize)
	if err != nil {
		return nil, fmt.Errorf("object table: %w: %w", ErrTruncated, err)
	}
	end = max(end, tableEnd)

	objects := make([]*Object, 0, count)
	for i := range count {
		entry := b[tableOff+i*ObjectEntrySize:]
		dataOff := int(buf.U32LE(entry[ObjDataOffset:]))
		dataSize := int(buf.U32LE(entry[ObjDataSizeOffset:]))
		dataEnd, rangeErr := buf.CheckRange(len(b), dataOff, dataSize)
		if rangeErr != nil {
			return nil, fmt.Errorf("object %d data: %w: %w", i+1, ErrTruncated, rangeErr)
		}
		end = max(end, dataEnd)
		objects = append(objects, &Object{
			VirtualSize: buf.U32LE(entry[ObjVirtualSizeOffset:]),
			Flags:       ObjFlag(buf.U32LE(entry[ObjFlagsOffset:])),
			RelocCount:  buf.U32LE(entry[ObjRelocCountOffset:]),
			data:        buf.Clone(b[dataOff:dataEnd]),
		})
	}

	return New(hdr, objects, b[end:])
}

// Header returns the decoded header.
func (e *Exe) Header() Header { return e.hdr }

// NumObjects returns the number of objects in the table.
func (e *Exe) NumObjects() int { return len(e.objects) }

// Object returns the object with the given 1-based index.
func (e *Exe) Object(n int) (*Object, bool) {
	if n < 1 || n > len(e.objects) {
		return nil, false
	}
	return e.objects[n-1], true
}

// Trailer returns a copy of the bytes following the last object (relocation records).
func (e *Exe) Trailer() []byte { return buf.Clone(e.trailer) }

func (e *Exe) entry() *Object {
	return e.objects[e.hdr.EntryObject-1]
}

// EntryObjectData returns a read-only view of the entry object's data.
// Callers must not modify the returned slice.
func (e *Exe) EntryObjectData() ([]byte, error) {
	if e.hdr.Compressed() {
		return nil, ErrCompressed
	}
	d := e.entry().data
	return d[:len(d):len(d)], nil
}

// ReplaceEntryObjectData passes the entry object's current data to fn and
// stores the slice fn returns. It is the only way to change object data and
// may succeed at most once per Exe.
func (e *Exe) ReplaceEntryObjectData(fn func(data []byte) []byte) error {
	if e.replaced {
		return ErrAlreadyReplaced
	}
	cur, err := e.EntryObjectData()
	if err != nil {
		return err
	}
	next := fn(cur)
	obj := e.entry()
	obj.data = buf.Clone(next)
	if obj.VirtualSize < uint32(len(obj.data)) {
		obj.VirtualSize = uint32(len(obj.data))
	}
	e.replaced = true
	return nil
}

// Bytes serializes the container: header, object table, object data in table
// order, then the trailer. Offsets are recomputed, so a container whose
// regions were already laid out this way round-trips byte for byte.
func (e *Exe) Bytes() []byte {
	tableOff := HeaderSize
	dataOff := tableOff + len(e.objects)*ObjectEntrySize
	size := dataOff + len(e.trailer)
	for _, o := range e.objects {
		size += len(o.data)
	}

	out := make([]byte, size)
	copy(out, Signature)
	buf.PutU16LE(out, VersionOffset, e.hdr.Version)
	buf.PutU16LE(out, FlagsOffset, e.hdr.Flags)
	buf.PutU32LE(out, EntryObjectOffset, e.hdr.EntryObject)
	buf.PutU32LE(out, EntryEIPOffset, e.hdr.EntryEIP)
	buf.PutU32LE(out, StackObjectOffset, e.hdr.StackObject)
	buf.PutU32LE(out, StackESPOffset, e.hdr.StackESP)
	buf.PutU32LE(out, ObjectTableOffset, uint32(tableOff))
	buf.PutU32LE(out, ObjectCountOffset, uint32(len(e.objects)))

	for i, o := range e.objects {
		entry := tableOff + i*ObjectEntrySize
		buf.PutU32LE(out, entry+ObjVirtualSizeOffset, o.VirtualSize)
		buf.PutU32LE(out, entry+ObjFlagsOffset, uint32(o.Flags))
		buf.PutU32LE(out, entry+ObjDataOffset, uint32(dataOff))
		buf.PutU32LE(out, entry+ObjDataSizeOffset, uint32(len(o.data)))
		buf.PutU32LE(out, entry+ObjRelocCountOffset, o.RelocCount)
		dataOff += copy(out[dataOff:], o.data)
	}
	copy(out[dataOff:], e.trailer)
	return out
}
