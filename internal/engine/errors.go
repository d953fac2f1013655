package engine

import (
	"errors"
	"fmt"
)

// ErrContainerInvalid indicates the bytes after the stub did not parse as a container.
var ErrContainerInvalid = errors.New("engine: invalid container")

// Error records the engine phase that failed.
type Error struct {
	Op  string // "split", "parse", "read", "select", "apply", "verify"
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("patch engine %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
