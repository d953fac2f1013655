// Package format houses the low-level decoder for the DOS stub that fronts a
// hybrid 16/32-bit executable. Only the fields needed to find the end of the
// stub are decoded; everything after it belongs to the embedded container.
package format

// MZSignature is the two-byte magic at the start of every DOS executable.
var MZSignature = []byte{'M', 'Z'}

const (
	// StubHeaderSize is the size of the fixed part of the MZ header.
	StubHeaderSize = 0x1C

	// PageSize is the unit the MZ header counts the load image in.
	PageSize = 512

	// Stub header field offsets.
	//
	//	Offset  Size  Description
	//	------  ----  ------------------------------------------
	//	 0x00    2    'M' 'Z'
	//	 0x02    2    bytes used in the last page (0 = full page)
	//	 0x04    2    total pages, including the partial last one
	MZSignatureOffset  = 0x00
	MZSignatureSize    = 2
	MZLastPageOffset   = 0x02
	MZTotalPagesOffset = 0x04
)
