//go:build unix

package zippy

import "github.com/spf13/afero"

// platformTag is the attribute compatibility tag of the running platform.
const platformTag = TagUnix

// restoreAttributes applies the entry's decoded permission bits to the
// written file.
func restoreAttributes(fsys afero.Fs, path string, e *Entry) error {
	perm := e.Attributes.Mode.Perm()
	if perm == 0 {
		// Attribute word carried no permissions; leave umask defaults.
		return nil
	}
	return fsys.Chmod(path, perm)
}
