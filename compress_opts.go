package zippy

import "github.com/spf13/afero"

// compressConfig holds write-orchestration options.
type compressConfig struct {
	conflict   ConflictPolicy
	stripRoot  bool
	password   string
	method     Method
	methodSet  bool
	digests    bool
	rangeStart int64
	rangeEnd   int64
	fsys       afero.Fs
}

func defaultCompressConfig() compressConfig {
	return compressConfig{
		conflict:   OnConflictFail,
		method:     MethodDeflate,
		rangeStart: -1,
		rangeEnd:   -1,
		fsys:       afero.NewOsFs(),
	}
}

// CompressOption configures a Compress call.
type CompressOption func(*compressConfig)

// CompressWithConflictPolicy sets the behavior when a path destination
// already exists. The default fails without touching the existing file.
func CompressWithConflictPolicy(policy ConflictPolicy) CompressOption {
	return func(c *compressConfig) {
		c.conflict = policy
	}
}

// CompressWithStripRoot is forwarded to the scanner: directory-scanned
// entries are named relative to the scanned root itself.
func CompressWithStripRoot(strip bool) CompressOption {
	return func(c *compressConfig) {
		c.stripRoot = strip
	}
}

// CompressWithPassword supplies the encryption credential forwarded to the
// codec.
func CompressWithPassword(password string) CompressOption {
	return func(c *compressConfig) {
		c.password = password
	}
}

// CompressWithMethod sets the compression method for every scanned entry.
// The default is deflate. Entries re-encoded from an opened archive keep
// their recorded method unless this option is given.
func CompressWithMethod(method Method) CompressOption {
	return func(c *compressConfig) {
		c.method = method
		c.methodSet = true
	}
}

// CompressWithDigests records each scanned entry's content digest, for
// later verification during extraction.
func CompressWithDigests(enabled bool) CompressOption {
	return func(c *compressConfig) {
		c.digests = enabled
	}
}

// CompressWithRange bounds the write to the byte range [start, end) of the
// destination, for partial-target writes. The destination must be a path
// or an io.WriterAt. A negative end leaves the range open above.
func CompressWithRange(start, end int64) CompressOption {
	return func(c *compressConfig) {
		c.rangeStart = start
		c.rangeEnd = end
	}
}

// CompressWithFs sets the filesystem collaborator for both the scanner and
// a path destination. The default is the OS filesystem.
func CompressWithFs(fsys afero.Fs) CompressOption {
	return func(c *compressConfig) {
		c.fsys = fsys
	}
}
