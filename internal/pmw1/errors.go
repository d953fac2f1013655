package pmw1

import "errors"

var (
	// ErrSignatureMismatch indicates the container did not start with the PMW1 magic.
	ErrSignatureMismatch = errors.New("pmw1: signature mismatch")
	// ErrTruncated indicates a header, table, or object extends past the buffer.
	ErrTruncated = errors.New("pmw1: truncated buffer")
	// ErrBadEntryObject indicates the header names an object that does not exist.
	ErrBadEntryObject = errors.New("pmw1: entry object out of range")
	// ErrTooManyObjects indicates the object count exceeds MaxObjects.
	ErrTooManyObjects = errors.New("pmw1: too many objects")
	// ErrCompressed indicates object data is compressed and cannot be addressed directly.
	ErrCompressed = errors.New("pmw1: compressed object data is not supported")
	// ErrAlreadyReplaced indicates the entry object's data was already replaced once.
	ErrAlreadyReplaced = errors.New("pmw1: entry object data already replaced")
)
