// Package pmw1 reads and re-serializes the 32-bit container that follows the
// DOS stub. It exposes the object table and a single, guarded mutation path
// for the entry object's data; relocation records are carried through
// untouched.
package pmw1

// Signature is the four-byte magic at the start of the container.
var Signature = []byte{'P', 'M', 'W', '1'}

// Header layout (little-endian, offsets relative to the container start):
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    4    'P' 'M' 'W' '1'
//	 0x04    2    version
//	 0x06    2    flags (bit 0: object data is compressed)
//	 0x08    4    entry object (1-based)
//	 0x0C    4    EIP offset within the entry object
//	 0x10    4    stack object (1-based)
//	 0x14    4    ESP offset within the stack object
//	 0x18    4    object table offset
//	 0x1C    4    object count
const (
	HeaderSize = 0x20

	SignatureOffset   = 0x00
	SignatureSize     = 4
	VersionOffset     = 0x04
	FlagsOffset       = 0x06
	EntryObjectOffset = 0x08
	EntryEIPOffset    = 0x0C
	StackObjectOffset = 0x10
	StackESPOffset    = 0x14
	ObjectTableOffset = 0x18
	ObjectCountOffset = 0x1C
)

// Object table entry layout:
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------
//	 0x00    4    virtual size
//	 0x04    4    object flags
//	 0x08    4    data offset (relative to the container start)
//	 0x0C    4    stored data size
//	 0x10    4    relocation count
const (
	ObjectEntrySize = 0x14

	ObjVirtualSizeOffset = 0x00
	ObjFlagsOffset       = 0x04
	ObjDataOffset        = 0x08
	ObjDataSizeOffset    = 0x0C
	ObjRelocCountOffset  = 0x10
)

// FlagCompressed marks a container whose object data is stored compressed.
const FlagCompressed uint16 = 0x0001

// MaxObjects bounds the object table so a corrupt count cannot drive a huge allocation.
const MaxObjects = 0x400

// ObjFlag is a set of flags for an object.
type ObjFlag uint32

const (
	ObjR     ObjFlag = 0x0001 // readable
	ObjW     ObjFlag = 0x0002 // writable
	ObjX     ObjFlag = 0x0004 // executable
	Obj32Bit ObjFlag = 0x2000 // 32-bit code
)
