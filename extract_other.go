//go:build !unix

package zippy

import "github.com/spf13/afero"

// platformTag is the attribute compatibility tag of the running platform.
const platformTag = TagFAT

// restoreAttributes applies the MSDOS read-only bit to the written file.
func restoreAttributes(fsys afero.Fs, path string, e *Entry) error {
	if e.Attributes.Raw&msdosReadOnly == 0 {
		return nil
	}
	return fsys.Chmod(path, 0o444)
}
