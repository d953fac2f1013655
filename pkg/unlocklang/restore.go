package unlocklang

// Restore replaces the executable at path with its backup and returns the
// backup path. The backup itself is kept.
func Restore(path string, opts *RestoreOptions) (string, error) {
	if opts == nil {
		opts = &RestoreOptions{}
	}
	return newWriter(opts.BackupSuffix, opts.NoSync).Restore(path)
}
