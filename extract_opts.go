package zippy

import "github.com/spf13/afero"

// extractConfig holds extraction options.
type extractConfig struct {
	conflict      ConflictPolicy
	password      string
	restoreAttrs  bool
	verifyDigests bool
	fsys          afero.Fs
}

func defaultExtractConfig() extractConfig {
	return extractConfig{
		conflict:     OnConflictFail,
		restoreAttrs: true,
		fsys:         afero.NewOsFs(),
	}
}

// ExtractOption configures an extraction.
type ExtractOption func(*extractConfig)

// ExtractWithConflictPolicy sets the behavior when a destination file
// already exists. The default fails without touching the existing file.
func ExtractWithConflictPolicy(policy ConflictPolicy) ExtractOption {
	return func(c *extractConfig) {
		c.conflict = policy
	}
}

// ExtractWithPassword supplies the decryption credential forwarded to the
// codec.
func ExtractWithPassword(password string) ExtractOption {
	return func(c *extractConfig) {
		c.password = password
	}
}

// ExtractWithAttributes controls restoration of native file attributes
// (permission bits) for entries whose compatibility tag matches this
// platform. Enabled by default. Ownership is never restored.
func ExtractWithAttributes(restore bool) ExtractOption {
	return func(c *extractConfig) {
		c.restoreAttrs = restore
	}
}

// ExtractWithVerifyDigests re-hashes each written file and compares it to
// the entry's recorded content digest, when one is present.
func ExtractWithVerifyDigests(verify bool) ExtractOption {
	return func(c *extractConfig) {
		c.verifyDigests = verify
	}
}

// ExtractWithFs sets the destination filesystem. The default is the OS
// filesystem.
func ExtractWithFs(fsys afero.Fs) ExtractOption {
	return func(c *extractConfig) {
		c.fsys = fsys
	}
}
