// Package delta compares an original image with its patched form and
// produces a bsdiff delta that reproduces the patch on an identical copy.
package delta

import (
	"fmt"

	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
	"github.com/gabstv/go-bsdiff/pkg/bspatch"
)

// Range is a run of differing bytes at file offset Off.
type Range struct {
	Off int `json:"offset"`
	Len int `json:"length"`
}

// Changed returns the runs where a and b differ. When the lengths differ,
// the excess tail of the longer input is reported as one final run.
func Changed(a, b []byte) []Range {
	var out []Range
	n := min(len(a), len(b))
	start := -1
	for i := range n {
		switch {
		case a[i] != b[i] && start < 0:
			start = i
		case a[i] == b[i] && start >= 0:
			out = append(out, Range{Off: start, Len: i - start})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Range{Off: start, Len: n - start})
	}
	if len(a) != len(b) {
		out = append(out, Range{Off: n, Len: max(len(a), len(b)) - n})
	}
	return out
}

// Compute returns a bsdiff delta turning base into target.
func Compute(base, target []byte) ([]byte, error) {
	patch, err := bsdiff.Bytes(base, target)
	if err != nil {
		return nil, fmt.Errorf("delta: compute: %w", err)
	}
	return patch, nil
}

// Apply reconstructs the target from base and a delta made by Compute.
func Apply(base, patch []byte) ([]byte, error) {
	out, err := bspatch.Bytes(base, patch)
	if err != nil {
		return nil, fmt.Errorf("delta: apply: %w", err)
	}
	return out, nil
}
