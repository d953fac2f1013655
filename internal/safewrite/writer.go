// Package safewrite persists a patched image with a backup-then-replace
// protocol. The replacement step only accepts a *Backup, which can only be
// obtained from a backup that was fully written, flushed and closed.
package safewrite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/PluMGMK/ray1-unlocklang/internal/logger"
)

// DefaultBackupSuffix is appended to the target path to name the backup.
const DefaultBackupSuffix = ".BAK"

var (
	// ErrBackupExists indicates the backup path is already taken. The
	// existing file is left untouched. errors.Is(err, fs.ErrExist) also holds.
	ErrBackupExists = errors.New("safewrite: backup already exists")
	// ErrNoBackup indicates Replace was called without a completed backup.
	ErrNoBackup = errors.New("safewrite: no completed backup")
)

// Writer creates backups and replaces targets.
type Writer struct {
	suffix string
	mode   FlushMode
}

// NewWriter creates a writer using DefaultBackupSuffix and FlushAuto.
func NewWriter() *Writer {
	return &Writer{suffix: DefaultBackupSuffix, mode: FlushAuto}
}

// SetBackupSuffix changes the suffix appended to the target path.
func (w *Writer) SetBackupSuffix(suffix string) {
	if suffix != "" {
		w.suffix = suffix
	}
}

// SetFlushMode changes how files are synced before close.
func (w *Writer) SetFlushMode(mode FlushMode) {
	w.mode = mode
}

// BackupPath returns the backup path for target.
func (w *Writer) BackupPath(target string) string {
	return target + w.suffix
}

// Backup is proof that a complete copy of the original image was written,
// flushed and closed. Only CreateBackup produces one.
type Backup struct {
	path   string
	target string
	size   int64
	mode   fs.FileMode
}

// Path returns the backup file path.
func (b *Backup) Path() string { return b.path }

// Target returns the path the backup protects.
func (b *Backup) Target() string { return b.target }

// Size returns the number of bytes in the backup.
func (b *Backup) Size() int64 { return b.size }

// CreateBackup writes original to the backup path for target. The backup is
// created exclusively: an existing file at that path fails with
// ErrBackupExists. A partially written backup is removed before returning
// an error.
func (w *Writer) CreateBackup(target string, original []byte) (*Backup, error) {
	perm := fs.FileMode(0o644)
	if st, err := os.Stat(target); err == nil {
		perm = st.Mode().Perm()
	}

	path := w.BackupPath(target)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %w", ErrBackupExists, err)
		}
		return nil, fmt.Errorf("creating backup: %w", err)
	}

	// Cleanup partial backup if we fail
	cleanup := func() {
		f.Close()
		os.Remove(path)
	}

	if _, writeErr := f.Write(original); writeErr != nil {
		cleanup()
		return nil, fmt.Errorf("writing backup: %w", writeErr)
	}
	if syncErr := flush(f, w.mode); syncErr != nil {
		cleanup()
		return nil, fmt.Errorf("syncing backup: %w", syncErr)
	}
	if closeErr := f.Close(); closeErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("closing backup: %w", closeErr)
	}
	if verifyErr := verifyBackup(path, int64(len(original))); verifyErr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("backup verification failed: %w", verifyErr)
	}

	logger.Debug("backup written", "path", path, "size", len(original), "flush", w.mode.String())
	return &Backup{path: path, target: target, size: int64(len(original)), mode: perm}, nil
}

// Replace truncates the backed-up target and writes parts to it in order.
// A failure here can leave the target partially written; the backup is
// never touched.
func (w *Writer) Replace(b *Backup, parts ...[]byte) error {
	if b == nil || b.path == "" {
		return ErrNoBackup
	}
	// The backup must still be there and whole before the original goes away.
	if err := verifyBackup(b.path, b.size); err != nil {
		return fmt.Errorf("%w: %w", ErrNoBackup, err)
	}

	f, err := os.OpenFile(b.target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, b.mode)
	if err != nil {
		return fmt.Errorf("opening target: %w", err)
	}
	for _, p := range parts {
		if _, writeErr := f.Write(p); writeErr != nil {
			f.Close()
			return fmt.Errorf("writing target: %w", writeErr)
		}
	}
	if syncErr := flush(f, w.mode); syncErr != nil {
		f.Close()
		return fmt.Errorf("syncing target: %w", syncErr)
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("closing target: %w", closeErr)
	}

	logger.Debug("target replaced", "path", b.target, "backup", b.path)
	return nil
}

// Persist backs up original and then replaces target with stub followed by
// container. It returns the backup on success, and also when the backup
// succeeded but the replacement failed, so the caller can point at it.
func (w *Writer) Persist(target string, original, stub, container []byte) (*Backup, error) {
	b, err := w.CreateBackup(target, original)
	if err != nil {
		return nil, err
	}
	if err := w.Replace(b, stub, container); err != nil {
		return b, err
	}
	return b, nil
}

// WriteAtomic writes data to a file atomically using temp-file-then-rename.
// This ensures that the target file is never left in a corrupted state.
//
// Steps:
//  1. Create temporary file in same directory as target
//  2. Write data to temp file
//  3. Fsync temp file to ensure data is on disk
//  4. Rename temp file to target (atomic operation)
//  5. Fsync parent directory to ensure rename is persisted
func (w *Writer) WriteAtomic(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	dir := filepath.Dir(absPath)

	perm := fs.FileMode(0o644)
	if st, statErr := os.Stat(absPath); statErr == nil {
		perm = st.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, ".unlocklang-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		cleanup()
		return fmt.Errorf("writing to temp file: %w", writeErr)
	}
	if syncErr := flush(tmpFile, w.mode); syncErr != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", syncErr)
	}
	if chmodErr := tmpFile.Chmod(perm); chmodErr != nil {
		cleanup()
		return fmt.Errorf("setting temp file mode: %w", chmodErr)
	}
	// Close before rename (required on Windows)
	if closeErr := tmpFile.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if renameErr := os.Rename(tmpPath, absPath); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}

	if syncDirErr := syncDir(dir); syncDirErr != nil {
		// Data is already in place; a lost directory entry sync is not fatal.
		logger.Warn("directory sync failed", "dir", dir, "err", syncDirErr)
	}
	return nil
}

// Restore atomically replaces target with the contents of its backup. The
// backup is kept.
func (w *Writer) Restore(target string) (string, error) {
	path := w.BackupPath(target)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading backup: %w", err)
	}
	if err := w.WriteAtomic(target, data); err != nil {
		return "", fmt.Errorf("restoring from backup: %w", err)
	}
	logger.Info("target restored", "path", target, "backup", path, "size", len(data))
	return path, nil
}

// syncDir fsyncs a directory to ensure metadata changes are persisted.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	defer d.Close()

	if syncErr := d.Sync(); syncErr != nil {
		return fmt.Errorf("syncing directory: %w", syncErr)
	}
	return nil
}

// verifyBackup checks that the file exists, has the expected size and is readable.
func verifyBackup(path string, expectedSize int64) error {
	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("backup file not found: %w", err)
	}
	if stat.Size() != expectedSize {
		return fmt.Errorf("backup size mismatch: expected %d, got %d", expectedSize, stat.Size())
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}
	f.Close()
	return nil
}
