package signature

import (
	"fmt"
	"strings"
)

// FieldKind selects how a field's bytes take part in matching and patching.
type FieldKind int

const (
	// FieldLiteral must equal Want before and after patching and is never rewritten.
	FieldLiteral FieldKind = iota
	// FieldReplace holds Want in an unpatched image and Fixed in a patched one.
	FieldReplace
	// FieldAddress is a little-endian 32-bit operand. It is decoded for
	// reporting and never compared or rewritten.
	FieldAddress
)

// AddressSize is the width of a FieldAddress operand.
const AddressSize = 4

func (k FieldKind) String() string {
	switch k {
	case FieldLiteral:
		return "literal"
	case FieldReplace:
		return "replace"
	case FieldAddress:
		return "address"
	default:
		return "unknown"
	}
}

// Field is one contiguous sub-window of a Rule.
type Field struct {
	Name  string
	Kind  FieldKind
	Want  []byte
	Fixed []byte
}

// Literal returns a field that must match want exactly.
func Literal(name string, want ...byte) Field {
	return Field{Name: name, Kind: FieldLiteral, Want: want}
}

// Replace returns a field that is rewritten from want to fixed.
func Replace(name string, want, fixed []byte) Field {
	return Field{Name: name, Kind: FieldReplace, Want: want, Fixed: fixed}
}

// Address returns a decode-only 32-bit operand field.
func Address(name string) Field {
	return Field{Name: name, Kind: FieldAddress}
}

// Len returns the field width in bytes.
func (f Field) Len() int {
	if f.Kind == FieldAddress {
		return AddressSize
	}
	return len(f.Want)
}

func (f Field) validate() error {
	switch f.Kind {
	case FieldLiteral:
		if len(f.Want) == 0 {
			return fmt.Errorf("literal field %q is empty", f.Name)
		}
		if f.Fixed != nil {
			return fmt.Errorf("literal field %q has a fixed form", f.Name)
		}
	case FieldReplace:
		if len(f.Want) == 0 {
			return fmt.Errorf("replace field %q is empty", f.Name)
		}
		if len(f.Fixed) != len(f.Want) {
			return fmt.Errorf("replace field %q: fixed form is %d bytes, want %d",
				f.Name, len(f.Fixed), len(f.Want))
		}
		if string(f.Fixed) == string(f.Want) {
			return fmt.Errorf("replace field %q: fixed form equals unpatched form", f.Name)
		}
	case FieldAddress:
		if f.Want != nil || f.Fixed != nil {
			return fmt.Errorf("address field %q carries literal bytes", f.Name)
		}
	default:
		return fmt.Errorf("field %q: unknown kind %d", f.Name, f.Kind)
	}
	return nil
}

// pattern renders the field as hex, with ?? for bytes that are not compared.
func (f Field) pattern(fixed bool) string {
	switch f.Kind {
	case FieldAddress:
		return strings.TrimSpace(strings.Repeat("?? ", AddressSize))
	case FieldReplace:
		if fixed {
			return fmt.Sprintf("% x", f.Fixed)
		}
	}
	return fmt.Sprintf("% x", f.Want)
}
