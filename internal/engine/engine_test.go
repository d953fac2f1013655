package engine

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PluMGMK/ray1-unlocklang/internal/format"
	"github.com/PluMGMK/ray1-unlocklang/internal/pmw1"
	"github.com/PluMGMK/ray1-unlocklang/internal/signature"
	"github.com/PluMGMK/ray1-unlocklang/internal/testimage"
)

func entryOf(t *testing.T, container []byte) []byte {
	t.Helper()
	exe, err := pmw1.Parse(container)
	require.NoError(t, err)
	data, err := exe.EntryObjectData()
	require.NoError(t, err)
	return data
}

func TestSplit(t *testing.T) {
	raw := testimage.Build(testimage.WideUnpatched, testimage.Options{StubPages: 10, StubLastPage: 200})
	img, err := Split(raw)
	require.NoError(t, err)
	assert.Equal(t, 4808, len(img.Stub))
	assert.Equal(t, 4808, img.Header.Len())
	assert.Equal(t, raw[4808:], img.Container)
	assert.Equal(t, pmw1.Signature, img.Container[:4])
}

func TestSplitPureStub(t *testing.T) {
	stub := testimage.Stub(2, 0)
	_, err := Split(stub)
	require.ErrorIs(t, err, format.ErrNoEmbeddedContainer)

	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "split", ee.Op)

	_, err = Split(stub[:len(stub)-1])
	assert.ErrorIs(t, err, format.ErrNoEmbeddedContainer)
}

func TestSplitHeaderErrors(t *testing.T) {
	_, err := Split([]byte("MZ"))
	assert.ErrorIs(t, err, format.ErrTruncated)

	raw := testimage.Build(testimage.WideUnpatched, testimage.Options{})
	raw[0] = 'N'
	_, err = Split(raw)
	assert.ErrorIs(t, err, format.ErrSignatureMismatch)
}

func TestRunWide(t *testing.T) {
	container := testimage.Container(testimage.WideUnpatched, 0)
	before := entryOf(t, container)
	orig := bytes.Clone(container)

	res, err := New(Config{}).Run(container)
	require.NoError(t, err)
	assert.Equal(t, orig, container, "input must not be modified")
	assert.Same(t, signature.Wide, res.Match.Rule)
	assert.Equal(t, testimage.WideUnpatched, res.Before)
	assert.Equal(t, testimage.WidePatched, res.After)

	after := entryOf(t, res.Container)
	require.Equal(t, len(before), len(after))

	off := signature.PatchOffset
	assert.Equal(t, testimage.WidePatched, after[off:off+10])
	if diff := cmp.Diff(before[:off], after[:off]); diff != "" {
		t.Fatalf("bytes before the window changed:\n%s", diff)
	}
	if diff := cmp.Diff(before[off+10:], after[off+10:]); diff != "" {
		t.Fatalf("bytes after the window changed:\n%s", diff)
	}
}

func TestRunNarrow(t *testing.T) {
	container := testimage.Container(testimage.NarrowUnpatched, 0)
	before := entryOf(t, container)

	res, err := New(Config{}).Run(container)
	require.NoError(t, err)
	assert.Same(t, signature.Narrow, res.Match.Rule)
	require.True(t, res.Match.HasAddress)
	assert.Equal(t, uint32(0x0003FA35), res.Match.Address)

	after := entryOf(t, res.Container)
	off := signature.PatchOffset
	for i := range before {
		if i == off+4 || i == off+5 {
			continue
		}
		if before[i] != after[i] {
			t.Fatalf("byte 0x%X changed: %02x -> %02x", i, before[i], after[i])
		}
	}
	assert.Equal(t, []byte{0x8a, 0x15}, after[off+4:off+6])

	// The operand reads the same after patching.
	m := signature.Narrow.Evaluate(after)
	assert.Equal(t, signature.StatePatched, m.State)
	assert.Equal(t, uint32(0x0003FA35), m.Address)
}

func TestRunTwiceIsAlreadyPatched(t *testing.T) {
	for _, window := range [][]byte{testimage.WideUnpatched, testimage.NarrowUnpatched} {
		e := New(Config{})
		res, err := e.Run(testimage.Container(window, 0))
		require.NoError(t, err)

		_, err = e.Run(res.Container)
		assert.ErrorIs(t, err, signature.ErrAlreadyPatched)
	}
}

func TestRunPreservesOtherObjects(t *testing.T) {
	container := testimage.Container(testimage.WideUnpatched, 0)
	res, err := New(Config{}).Run(container)
	require.NoError(t, err)

	in, err := pmw1.Parse(container)
	require.NoError(t, err)
	out, err := pmw1.Parse(res.Container)
	require.NoError(t, err)

	assert.Equal(t, in.Header(), out.Header())
	require.Equal(t, in.NumObjects(), out.NumObjects())
	o1, _ := in.Object(2)
	o2, _ := out.Object(2)
	assert.Equal(t, o1.Data(), o2.Data())
	assert.Equal(t, in.Trailer(), out.Trailer())
	assert.Equal(t, len(container), len(res.Container))
}

func TestRunUnrecognized(t *testing.T) {
	_, err := New(Config{}).Run(testimage.Container(testimage.Garbage, 0))
	require.ErrorIs(t, err, signature.ErrUnrecognized)

	var me *signature.MatchError
	require.True(t, errors.As(err, &me))
	assert.Len(t, me.Matches, 2)
}

func TestRunEntryObjectTooSmall(t *testing.T) {
	_, err := New(Config{}).Run(testimage.Container(nil, 0x1000))
	assert.ErrorIs(t, err, signature.ErrUnrecognized)
}

func TestRunContainerInvalid(t *testing.T) {
	_, err := New(Config{}).Run([]byte("not a container at all, just text"))
	require.ErrorIs(t, err, ErrContainerInvalid)
	assert.ErrorIs(t, err, pmw1.ErrSignatureMismatch)

	var ee *Error
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, "parse", ee.Op)
}

func TestRunCompressedContainer(t *testing.T) {
	container := testimage.Container(testimage.WideUnpatched, 0)
	container[pmw1.FlagsOffset] |= byte(pmw1.FlagCompressed)
	_, err := New(Config{}).Run(container)
	assert.ErrorIs(t, err, ErrContainerInvalid)
	assert.ErrorIs(t, err, pmw1.ErrCompressed)
}

type fakeContainer struct {
	data     []byte
	replaces int
}

func (f *fakeContainer) EntryObjectData() ([]byte, error) { return f.data, nil }

func (f *fakeContainer) ReplaceEntryObjectData(fn func([]byte) []byte) error {
	f.replaces++
	f.data = fn(f.data)
	return nil
}

func (f *fakeContainer) Bytes() []byte { return f.data }

func TestRunCustomContainerAndTable(t *testing.T) {
	rule := &signature.Rule{
		Name:   "tiny",
		Offset: 2,
		Fields: []signature.Field{signature.Replace("b", []byte{0xAA}, []byte{0xBB})},
	}
	tbl := signature.MustTable(rule)
	fake := &fakeContainer{data: []byte{0, 1, 0xAA, 3}}
	e := New(Config{
		Table: tbl,
		Parse: func([]byte) (Container, error) { return fake, nil },
	})

	res, err := e.Run(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.replaces)
	assert.Equal(t, []byte{0, 1, 0xBB, 3}, res.Container)
}

func TestRunSelectFailureDoesNotReplace(t *testing.T) {
	fake := &fakeContainer{data: testimage.EntryData(testimage.WidePatched, 0)}
	e := New(Config{Parse: func([]byte) (Container, error) { return fake, nil }})
	_, err := e.Run(nil)
	assert.ErrorIs(t, err, signature.ErrAlreadyPatched)
	assert.Zero(t, fake.replaces)
}

func TestInspect(t *testing.T) {
	e := New(Config{})

	r, err := e.Inspect(testimage.Container(testimage.NarrowUnpatched, 0))
	require.NoError(t, err)
	require.NotNil(t, r.Selected)
	assert.Same(t, signature.Narrow, r.Selected.Rule)
	assert.NoError(t, r.SelectErr)
	require.Len(t, r.Matches, 2)
	assert.Equal(t, signature.StateNoMatch, r.Matches[0].State)
	assert.Equal(t, signature.StateUnpatched, r.Matches[1].State)

	r, err = e.Inspect(testimage.Container(testimage.WidePatched, 0))
	require.NoError(t, err)
	assert.Nil(t, r.Selected)
	assert.ErrorIs(t, r.SelectErr, signature.ErrAlreadyPatched)

	_, err = e.Inspect([]byte("junk"))
	assert.ErrorIs(t, err, ErrContainerInvalid)
}
