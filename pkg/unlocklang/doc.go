/*
Package unlocklang patches the language selection check out of a DOS
extender executable, leaving a backup of the original next to it.

# Quick Start

Patch an executable in place:

	res, err := unlocklang.Patch("RAYMAN.EXE", nil)

The original is first written to RAYMAN.EXE.BAK. The file is only rewritten
once that backup is complete, and nothing at all is written when the
executable is not recognized or has already been patched.

Only uncompressed PMW1 containers can be read. Compressed ones fail with
ErrContainerInvalid.

# Inspecting

Inspect reports how every known byte layout reads at the patch location
without modifying anything:

	rep, err := unlocklang.Inspect("RAYMAN.EXE", nil)
	for _, m := range rep.Matches {
	    fmt.Println(m.Rule.Name, m.State)
	}

# Undoing

Restore copies the backup back over the executable, and Diff lists the byte
ranges that differ between the two:

	_, err := unlocklang.Restore("RAYMAN.EXE", nil)

# Error Handling

Failures wrap sentinel errors from the internal packages and are re-exported
here for errors.Is:

	_, err := unlocklang.Patch(path, nil)
	switch {
	case errors.Is(err, unlocklang.ErrAlreadyPatched):
	case errors.Is(err, unlocklang.ErrUnrecognized):
	case errors.Is(err, unlocklang.ErrBackupExists):
	}
*/
package unlocklang
