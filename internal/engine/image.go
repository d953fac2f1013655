package engine

import (
	"fmt"

	"github.com/PluMGMK/ray1-unlocklang/internal/format"
)

// Image is a raw executable split at the end of its DOS stub. Both regions
// alias the buffer passed to Split.
type Image struct {
	Header    format.Stub
	Stub      []byte
	Container []byte
}

// Split parses the stub header and separates the stub from the embedded
// container. An image that ends where the stub ends is rejected with
// format.ErrNoEmbeddedContainer.
func Split(raw []byte) (Image, error) {
	hdr, err := format.ParseStub(raw)
	if err != nil {
		return Image{}, &Error{Op: "split", Err: err}
	}
	n := hdr.Len()
	if len(raw) <= n {
		return Image{}, &Error{Op: "split", Err: fmt.Errorf(
			"image is %d bytes, stub is %d: %w", len(raw), n, format.ErrNoEmbeddedContainer)}
	}
	return Image{Header: hdr, Stub: raw[:n:n], Container: raw[n:]}, nil
}
