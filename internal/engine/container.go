package engine

import "github.com/PluMGMK/ray1-unlocklang/internal/pmw1"

// Container is the view of the embedded executable the engine works through.
// ReplaceEntryObjectData is the only way the entry object's bytes change.
type Container interface {
	EntryObjectData() ([]byte, error)
	ReplaceEntryObjectData(fn func(data []byte) []byte) error
	Bytes() []byte
}

// ParseFunc builds a Container from the bytes that follow the stub.
type ParseFunc func(b []byte) (Container, error)

// ParsePMW1 adapts pmw1.Parse to ParseFunc.
func ParsePMW1(b []byte) (Container, error) {
	exe, err := pmw1.Parse(b)
	if err != nil {
		return nil, err
	}
	return exe, nil
}
