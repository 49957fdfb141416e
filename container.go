package zippy

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
)

// Container is the in-memory aggregate representing one archive: an ordered
// sequence of entries, an ordered sequence of disks, and an optional
// free-text comment. The container owns both sequences; closing it releases
// every disk.
type Container struct {
	entries []*Entry
	disks   []Disk
	comment string

	fsys  afero.Fs
	codec Codec
}

func newContainer(fsys afero.Fs, codec Codec) *Container {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	if codec == nil {
		codec = defaultCodec()
	}
	return &Container{fsys: fsys, codec: codec}
}

// Open opens an existing archive file and reads its directory of entries.
// The returned container holds an open handle to the file until Close.
func Open(path string, opts ...Option) (*Container, error) {
	cfg := containerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := newContainer(cfg.fsys, cfg.codec)

	f, err := c.fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat archive: %w", err)
	}
	c.disks = []Disk{newStreamDisk(f, info.Size())}

	if err := c.codec.ReadDirectory(c); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// OpenBytes opens an archive held in memory. The buffer is not copied; the
// caller must not mutate it while the container is in use.
func OpenBytes(data []byte, opts ...Option) (*Container, error) {
	cfg := containerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := newContainer(cfg.fsys, cfg.codec)
	c.disks = []Disk{newMemoryDisk(data)}

	if err := c.codec.ReadDirectory(c); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// Entries returns the container's entries in archive order. The slice is
// the container's own; callers must not grow it.
func (c *Container) Entries() []*Entry {
	return c.entries
}

// Disks returns the container's disk sequence.
func (c *Container) Disks() []Disk {
	return c.disks
}

// Comment returns the archive's free-text comment.
func (c *Container) Comment() string {
	return c.comment
}

// SetComment sets the archive's free-text comment.
func (c *Container) SetComment(comment string) {
	c.comment = comment
}

// add appends an entry, attaching it to the container.
func (c *Container) add(e *Entry) error {
	if err := e.attach(c); err != nil {
		return err
	}
	c.entries = append(c.entries, e)
	return nil
}

// Close closes every stream-backed disk and clears the disk sequence. It is
// idempotent: closing an already-closed container is a no-op.
func (c *Container) Close() error {
	return c.close(false)
}

// Abort closes the container, asking disks to discard partial output where
// the underlying resource supports it. Like Close, it is idempotent.
func (c *Container) Abort() error {
	return c.close(true)
}

func (c *Container) close(discard bool) error {
	var errs []error
	for _, d := range c.disks {
		if err := d.Close(discard); err != nil {
			errs = append(errs, err)
		}
	}
	c.disks = nil
	return errors.Join(errs...)
}

// MoveToMemory replaces every stream-backed disk with an in-memory buffer
// holding the stream's full contents, then closes the original streams.
// Afterwards the container is independent of any open file handle.
//
// Every stream disk must still be open; a closed disk fails the whole
// operation with ErrDiskClosed before any disk is replaced. The call blocks
// for the total byte size of all disks.
func (c *Container) MoveToMemory() error {
	for i, d := range c.disks {
		sd, ok := d.(*streamDisk)
		if !ok {
			continue
		}
		if sd.closed {
			return fmt.Errorf("disk %d: %w", i, ErrDiskClosed)
		}
	}
	for i, d := range c.disks {
		sd, ok := d.(*streamDisk)
		if !ok {
			continue
		}
		buf, err := sd.readAll()
		if err != nil {
			return fmt.Errorf("disk %d: %w", i, err)
		}
		c.disks[i] = newMemoryDisk(buf)
		if err := sd.Close(false); err != nil {
			return fmt.Errorf("disk %d: %w", i, err)
		}
	}
	return nil
}

// openSource normalizes an extraction source into a container. The boolean
// reports whether the container was opened here and should be closed by the
// caller when the operation ends.
func openSource(src any, opts ...Option) (*Container, bool, error) {
	switch v := src.(type) {
	case *Container:
		return v, false, nil
	case string:
		c, err := Open(v, opts...)
		return c, true, err
	case []byte:
		c, err := OpenBytes(v, opts...)
		return c, true, err
	case *bytes.Buffer:
		c, err := OpenBytes(v.Bytes(), opts...)
		return c, true, err
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, false, fmt.Errorf("read archive source: %w", err)
		}
		c, err := OpenBytes(data, opts...)
		return c, true, err
	default:
		return nil, false, fmt.Errorf("%w: %T", ErrUnsupportedContent, src)
	}
}
