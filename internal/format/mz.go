package format

import (
	"bytes"
	"fmt"

	"github.com/PluMGMK/ray1-unlocklang/internal/buf"
)

// Stub is the decoded DOS stub header. It is a read-only view; the image
// bytes it was parsed from are not retained.
type Stub struct {
	BlocksUsedInLastPage uint16
	TotalPages           uint16
}

// ParseStub validates the MZ magic and decodes the page-count fields from the
// first StubHeaderSize bytes of image.
func ParseStub(image []byte) (Stub, error) {
	if len(image) < StubHeaderSize {
		return Stub{}, fmt.Errorf("mz header: %d bytes: %w", len(image), ErrTruncated)
	}
	if !bytes.Equal(image[MZSignatureOffset:MZSignatureSize], MZSignature) {
		return Stub{}, fmt.Errorf("mz header: found % x: %w", image[:MZSignatureSize], ErrSignatureMismatch)
	}
	s := Stub{
		BlocksUsedInLastPage: buf.U16LE(image[MZLastPageOffset:]),
		TotalPages:           buf.U16LE(image[MZTotalPagesOffset:]),
	}
	if s.Len() < StubHeaderSize {
		return Stub{}, fmt.Errorf("mz header: pages=%d last=%d: %w",
			s.TotalPages, s.BlocksUsedInLastPage, ErrBadStubLength)
	}
	return s, nil
}

// Len returns the byte length of the stub region. A zero last-page count
// means the final page is fully used.
func (s Stub) Len() int {
	n := int(s.TotalPages) * PageSize
	if s.BlocksUsedInLastPage != 0 {
		n -= PageSize - int(s.BlocksUsedInLastPage)
	}
	return n
}

// LastPageFull reports whether the final page of the stub is fully used.
func (s Stub) LastPageFull() bool {
	return s.BlocksUsedInLastPage == 0
}
