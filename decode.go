package zippy

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// decodeConfig holds per-decode options.
type decodeConfig struct {
	password string
	conflict ConflictPolicy
	fsys     afero.Fs
}

// DecodeOption configures a single decode operation.
type DecodeOption func(*decodeConfig)

// DecodeWithPassword supplies the decryption credential forwarded to the
// codec.
func DecodeWithPassword(password string) DecodeOption {
	return func(c *decodeConfig) {
		c.password = password
	}
}

// DecodeWithConflictPolicy sets the behavior when DecodeToFile's target
// already exists. The default fails without touching the existing file.
func DecodeWithConflictPolicy(policy ConflictPolicy) DecodeOption {
	return func(c *decodeConfig) {
		c.conflict = policy
	}
}

// decodeWithFs overrides the filesystem for DecodeToFile; used by the
// extraction pipeline.
func decodeWithFs(fsys afero.Fs) DecodeOption {
	return func(c *decodeConfig) {
		c.fsys = fsys
	}
}

// Decode drives the codec over the entry's payload, delivering decoded
// slices to sink in order until the uncompressed size has been written.
func (e *Entry) Decode(sink Sink, opts ...DecodeOption) error {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	return e.decode(sink, &cfg)
}

func (e *Entry) decode(sink Sink, cfg *decodeConfig) error {
	if e.container == nil || e.content != contentLocator {
		return fmt.Errorf("%w: %q", ErrNoLocator, e.Name)
	}
	return e.container.codec.Decode(e, sink, cfg.password)
}

// DecodeToWriter decodes the entry's payload into a caller-supplied open
// stream. The stream stays open afterwards; ownership is the caller's.
func (e *Entry) DecodeToWriter(w io.Writer, opts ...DecodeOption) error {
	return e.Decode(w, opts...)
}

// DecodeToFile decodes the entry's payload into the file at path, honoring
// the configured conflict policy. The file handle is closed on every exit
// path.
func (e *Entry) DecodeToFile(path string, opts ...DecodeOption) error {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	fsys := cfg.fsys
	if fsys == nil {
		if e.container != nil {
			fsys = e.container.fsys
		} else {
			fsys = afero.NewOsFs()
		}
	}

	f, err := openDestination(fsys, path, cfg.conflict)
	if err != nil {
		return err
	}
	decodeErr := e.decode(f, &cfg)
	closeErr := f.Close()
	if decodeErr != nil {
		return decodeErr
	}
	return closeErr
}

// DecodeToBytes decodes the entry's payload into a buffer sized exactly to
// the uncompressed size. dst may be nil (a new []byte is allocated), a
// []byte of exactly the right length, or any ByteStore implementation.
//
// The returned slice is the destination buffer for []byte-backed
// destinations and nil for other ByteStore implementations.
func (e *Entry) DecodeToBytes(dst any, opts ...DecodeOption) ([]byte, error) {
	if e.container == nil || e.content != contentLocator {
		return nil, fmt.Errorf("%w: %q", ErrNoLocator, e.Name)
	}

	var store ByteStore
	switch v := dst.(type) {
	case nil:
		store = SliceStore(make([]byte, e.UncompressedSize))
	case []byte:
		if uint64(len(v)) != e.UncompressedSize {
			return nil, fmt.Errorf("zippy: destination length %d does not match uncompressed size %d", len(v), e.UncompressedSize)
		}
		store = SliceStore(v)
	case ByteStore:
		if uint64(v.Len()) != e.UncompressedSize {
			return nil, fmt.Errorf("zippy: destination length %d does not match uncompressed size %d", v.Len(), e.UncompressedSize)
		}
		store = v
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedContent, dst)
	}

	if err := e.Decode(newVectorSink(store), opts...); err != nil {
		return nil, err
	}
	if s, ok := store.(SliceStore); ok {
		return []byte(s), nil
	}
	return nil, nil
}

// openDestination opens path for writing under the conflict policy.
func openDestination(fsys afero.Fs, path string, policy ConflictPolicy) (afero.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch policy {
	case OnConflictFail:
		flags |= os.O_EXCL
	case OnConflictOverwrite, OnConflictSupersede:
		flags |= os.O_TRUNC
	}
	f, err := fsys.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, fmt.Errorf("open destination: %w", err)
	}
	return f, nil
}
