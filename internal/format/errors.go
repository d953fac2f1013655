package format

import "errors"

var (
	// ErrSignatureMismatch indicates the image does not start with the MZ magic.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	// ErrTruncated indicates the buffer lacked the bytes required for a structure.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrBadStubLength indicates the page counts describe a stub shorter than its own header.
	ErrBadStubLength = errors.New("format: stub length smaller than header")
	// ErrNoEmbeddedContainer indicates the image ends at (or before) the end of the stub.
	ErrNoEmbeddedContainer = errors.New("format: pure stub, no embedded container")
)
