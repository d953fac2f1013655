package printer

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
	"github.com/PluMGMK/ray1-unlocklang/internal/testimage"
)

func TestGlyphs(t *testing.T) {
	assert.Equal(t, "MZ..", Glyphs([]byte{'M', 'Z', 0x00, 0x1f}))
	// 0xB0 is a light shade block and 0x82 is e-acute in code page 437.
	assert.Equal(t, "░é", Glyphs([]byte{0xB0, 0x82}))
	assert.Equal(t, ".", Glyphs([]byte{0x7f}))
}

func TestWindow(t *testing.T) {
	got := Window(0x3939F, []byte{0x30, 0xff, 0x41})
	// 0xFF is a no-break space in code page 437.
	assert.Equal(t, "0x03939F  30 ff 41  |0\u00a0A|", got)
}

func TestMatches(t *testing.T) {
	var out bytes.Buffer
	p := New(&out, Options{})
	data := testimage.EntryData(testimage.NarrowUnpatched, 0)
	p.Matches(signature.Default().Evaluate(data))

	s := out.String()
	assert.Contains(t, s, "Rule wide")
	assert.Contains(t, s, "no match")
	assert.Contains(t, s, "Rule narrow")
	assert.Contains(t, s, "unpatched")
	assert.Contains(t, s, "expected: 31 d2 30 ff 88 3d ?? ?? ?? ??")
	assert.Contains(t, s, "operand:  0x0003FA35")
}

func TestMatchesOutOfRange(t *testing.T) {
	var out bytes.Buffer
	New(&out, Options{}).Matches(signature.Default().Evaluate(make([]byte, 8)))
	assert.Contains(t, out.String(), "lies outside the entry object")
}

func TestMatchErrorText(t *testing.T) {
	_, err := signature.Default().Select(testimage.EntryData(testimage.Garbage, 0))
	require.Error(t, err)

	var out bytes.Buffer
	assert.True(t, New(&out, Options{}).MatchError(err))
	assert.Contains(t, out.String(), "found:    0x03939F  cc cc")

	assert.False(t, New(&out, Options{}).MatchError(errors.New("plain")))
}

func TestMatchErrorJSON(t *testing.T) {
	_, err := signature.Default().Select(testimage.EntryData(testimage.WidePatched, 0))
	require.Error(t, err)

	var out bytes.Buffer
	require.True(t, New(&out, Options{JSON: true}).MatchError(err))

	var doc struct {
		Error   string `json:"error"`
		Matches []struct {
			Rule  string `json:"rule"`
			State string `json:"state"`
			Found string `json:"found"`
		} `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, signature.ErrAlreadyPatched.Error(), doc.Error)
	require.Len(t, doc.Matches, 2)
	assert.Equal(t, "wide", doc.Matches[0].Rule)
	assert.Equal(t, "patched", doc.Matches[0].State)
	assert.Equal(t, "90 90 90 90 8a 15 35 fa 03 00", doc.Matches[0].Found)
}
