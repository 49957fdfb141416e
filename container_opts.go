package zippy

import "github.com/spf13/afero"

// containerConfig holds construction options shared by Open and OpenBytes.
type containerConfig struct {
	fsys  afero.Fs
	codec Codec
}

// Option configures container construction.
type Option func(*containerConfig)

// WithFs sets the filesystem collaborator. The default is the OS filesystem.
func WithFs(fsys afero.Fs) Option {
	return func(c *containerConfig) {
		c.fsys = fsys
	}
}

// WithCodec sets the archive codec. The default handles ZIP records with
// store, deflate, zstd, and xz compression.
func WithCodec(codec Codec) Option {
	return func(c *containerConfig) {
		c.codec = codec
	}
}
