package printer

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Glyphs renders b the way a DOS hex viewer would, decoding each byte as
// code page 437. Control characters become '.'.
func Glyphs(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		r := charmap.CodePage437.DecodeByte(c)
		if r < 0x20 || r == 0x7f {
			r = '.'
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Hex renders b as space-separated lowercase hex pairs.
func Hex(b []byte) string {
	return fmt.Sprintf("% x", b)
}

// Window renders a byte window as "0xOFFSET  hex  |glyphs|".
func Window(off int, b []byte) string {
	return fmt.Sprintf("0x%06X  %s  |%s|", off, Hex(b), Glyphs(b))
}
