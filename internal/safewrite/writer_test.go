package safewrite

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTarget(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "RAYMAN.EXE")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestPersist(t *testing.T) {
	original := []byte("MZ original stub + container bytes")
	target := writeTarget(t, original)

	w := NewWriter()
	b, err := w.Persist(target, original, []byte("MZstub"), []byte("PMW1patched"))
	require.NoError(t, err)
	assert.Equal(t, target+".BAK", b.Path())
	assert.Equal(t, target, b.Target())
	assert.Equal(t, int64(len(original)), b.Size())

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("MZstubPMW1patched"), got)

	backup, err := os.ReadFile(target + ".BAK")
	require.NoError(t, err)
	assert.Equal(t, original, backup)
}

func TestPersistShrinksTarget(t *testing.T) {
	original := bytes.Repeat([]byte{0xAB}, 4096)
	target := writeTarget(t, original)

	_, err := NewWriter().Persist(target, original, []byte{1}, []byte{2})
	require.NoError(t, err)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, got, "target must be truncated")
}

func TestCreateBackupRefusesExisting(t *testing.T) {
	original := []byte("original")
	target := writeTarget(t, original)
	require.NoError(t, os.WriteFile(target+".BAK", []byte("older backup"), 0o644))

	w := NewWriter()
	_, err := w.Persist(target, original, []byte("new"), nil)
	require.ErrorIs(t, err, ErrBackupExists)
	assert.True(t, errors.Is(err, fs.ErrExist))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, got, "target must be untouched")

	old, err := os.ReadFile(target + ".BAK")
	require.NoError(t, err)
	assert.Equal(t, []byte("older backup"), old, "existing backup must be untouched")
}

func TestSecondPersistFails(t *testing.T) {
	original := []byte("original")
	target := writeTarget(t, original)
	w := NewWriter()

	_, err := w.Persist(target, original, []byte("patched"), nil)
	require.NoError(t, err)

	current, err := os.ReadFile(target)
	require.NoError(t, err)
	_, err = w.Persist(target, current, []byte("patched again"), nil)
	require.ErrorIs(t, err, ErrBackupExists)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("patched"), got)
}

func TestReplaceRequiresBackup(t *testing.T) {
	target := writeTarget(t, []byte("original"))
	w := NewWriter()

	assert.ErrorIs(t, w.Replace(nil, []byte("x")), ErrNoBackup)
	assert.ErrorIs(t, w.Replace(&Backup{}, []byte("x")), ErrNoBackup)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestReplaceRefusesVanishedBackup(t *testing.T) {
	original := []byte("original")
	target := writeTarget(t, original)
	w := NewWriter()

	b, err := w.CreateBackup(target, original)
	require.NoError(t, err)
	require.NoError(t, os.Remove(b.Path()))

	err = w.Replace(b, []byte("patched"))
	assert.ErrorIs(t, err, ErrNoBackup)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, got)
}

func TestCreateBackupBadDirectory(t *testing.T) {
	_, err := NewWriter().CreateBackup("/nonexistent/directory/GAME.EXE", []byte("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrBackupExists)
}

func TestBackupSuffixAndFlushMode(t *testing.T) {
	original := []byte("original")
	target := writeTarget(t, original)

	w := NewWriter()
	w.SetBackupSuffix(".orig")
	w.SetFlushMode(FlushNone)
	b, err := w.CreateBackup(target, original)
	require.NoError(t, err)
	assert.Equal(t, target+".orig", b.Path())

	w.SetBackupSuffix("")
	assert.Equal(t, target+".orig", w.BackupPath(target), "empty suffix keeps the previous one")
}

func TestBackupKeepsMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not preserved on windows")
	}
	original := []byte("original")
	target := writeTarget(t, original)
	require.NoError(t, os.Chmod(target, 0o600))

	b, err := NewWriter().CreateBackup(target, original)
	require.NoError(t, err)
	st, err := os.Stat(b.Path())
	require.NoError(t, err)
	assert.Equal(t, fs.FileMode(0o600), st.Mode().Perm())
}

func TestRestore(t *testing.T) {
	original := []byte("original")
	target := writeTarget(t, original)
	w := NewWriter()

	_, err := w.Persist(target, original, []byte("patched"), nil)
	require.NoError(t, err)

	path, err := w.Restore(target)
	require.NoError(t, err)
	assert.Equal(t, target+".BAK", path)

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, original, got)

	_, err = os.Stat(path)
	assert.NoError(t, err, "backup is kept after restore")
}

func TestRestoreWithoutBackup(t *testing.T) {
	target := writeTarget(t, []byte("x"))
	_, err := NewWriter().Restore(target)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestWriteAtomic(t *testing.T) {
	w := NewWriter()
	path := filepath.Join(t.TempDir(), "test.dat")

	require.NoError(t, w.WriteAtomic(path, []byte("initial data")))
	require.NoError(t, w.WriteAtomic(path, []byte("new data that is longer")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("new data that is longer"), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	assert.Error(t, w.WriteAtomic("/nonexistent/directory/test.dat", []byte("x")))
}

func TestFlushModeString(t *testing.T) {
	assert.Equal(t, "auto", FlushAuto.String())
	assert.Equal(t, "none", FlushNone.String())
	assert.Equal(t, "full", FlushFull.String())
	assert.Equal(t, "unknown", FlushMode(42).String())
}
