package mmfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadIsOwned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAME.EXE")
	require.NoError(t, os.WriteFile(path, []byte("MZ original"), 0o644))

	data, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, []byte("overwritten"), 0o644))
	assert.Equal(t, []byte("MZ original"), data)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing"))
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing")
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "GAME.EXE")
	want := []byte{'M', 'Z', 0x90, 0x00, 0x03, 0x00}
	require.NoError(t, os.WriteFile(path, want, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, m.Path())
	assert.Equal(t, len(want), m.Len())
	assert.Equal(t, want, m.Bytes())

	require.NoError(t, m.Close())
	assert.Nil(t, m.Bytes())
	assert.NoError(t, m.Close(), "second close is a no-op")
}

func TestOpenZeroLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	m, err := Open(path)
	require.NoError(t, err)
	assert.Empty(t, m.Bytes())
	assert.NoError(t, m.Close())
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
