package zippy

import "github.com/spf13/afero"

// scanConfig holds scanner options.
type scanConfig struct {
	fsys      afero.Fs
	codec     Codec
	stripRoot bool
	digests   bool
}

// ScanOption configures source normalization.
type ScanOption func(*scanConfig)

// ScanWithStripRoot names directory-scanned entries relative to the given
// root itself rather than its parent, so the root directory's name is
// excluded from in-archive names.
func ScanWithStripRoot(strip bool) ScanOption {
	return func(c *scanConfig) {
		c.stripRoot = strip
	}
}

// ScanWithFs sets the filesystem collaborator for path and pattern sources.
// The default is the OS filesystem.
func ScanWithFs(fsys afero.Fs) ScanOption {
	return func(c *scanConfig) {
		c.fsys = fsys
	}
}

// ScanWithCodec sets the codec of the produced container.
func ScanWithCodec(codec Codec) ScanOption {
	return func(c *scanConfig) {
		c.codec = codec
	}
}

// ScanWithDigests records each entry's SHA-256 content digest while
// scanning. Digests of path and buffer content can later be verified during
// extraction; stream content is not digestible up front.
func ScanWithDigests(enabled bool) ScanOption {
	return func(c *scanConfig) {
		c.digests = enabled
	}
}
