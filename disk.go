package zippy

import (
	"fmt"
	"io"
)

// Disk is one storage volume of a (possibly multi-volume) archive. A disk
// is either backed by an open random-access stream or by an owned in-memory
// buffer; both variants expose random reads, a length, and a close
// operation.
//
// Disks are owned by their Container and referenced by index from entries.
type Disk interface {
	io.ReaderAt

	// Size returns the volume's total byte length.
	Size() int64

	// Close releases the disk's resources. When discard is true, partial
	// output may be thrown away where the underlying resource supports it.
	// Close is idempotent.
	Close(discard bool) error
}

// streamSource is the slice of stream behavior a stream-backed disk needs.
type streamSource interface {
	io.ReaderAt
	io.Closer
}

// streamDisk wraps a live byte stream. The length is cached at construction
// since not every stream exposes it cheaply.
type streamDisk struct {
	src    streamSource
	size   int64
	closed bool
}

func newStreamDisk(src streamSource, size int64) *streamDisk {
	return &streamDisk{src: src, size: size}
}

func (d *streamDisk) ReadAt(p []byte, off int64) (int, error) {
	if d.closed {
		return 0, ErrDiskClosed
	}
	return d.src.ReadAt(p, off)
}

func (d *streamDisk) Size() int64 {
	return d.size
}

func (d *streamDisk) Close(discard bool) error {
	if d.closed {
		return nil
	}
	d.closed = true
	// Stream handles have no discard-on-close support; the flag degrades
	// to a plain close.
	_ = discard
	return d.src.Close()
}

// readAll reads the disk's full contents into an owned buffer.
func (d *streamDisk) readAll() ([]byte, error) {
	if d.closed {
		return nil, ErrDiskClosed
	}
	buf := make([]byte, d.size)
	if _, err := io.ReadFull(io.NewSectionReader(d.src, 0, d.size), buf); err != nil {
		return nil, fmt.Errorf("read disk into memory: %w", err)
	}
	return buf, nil
}

// memoryDisk wraps an owned byte buffer with a read cursor range
// [start, end) and the logical offset of that window within the volume.
type memoryDisk struct {
	buf    []byte
	start  int
	end    int
	offset int64
}

func newMemoryDisk(buf []byte) *memoryDisk {
	return &memoryDisk{buf: buf, end: len(buf)}
}

func (d *memoryDisk) ReadAt(p []byte, off int64) (int, error) {
	off -= d.offset
	window := d.buf[d.start:d.end]
	if off < 0 || off > int64(len(window)) {
		return 0, fmt.Errorf("read at %d: %w", off, io.ErrUnexpectedEOF)
	}
	n := copy(p, window[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (d *memoryDisk) Size() int64 {
	return int64(d.end - d.start)
}

func (d *memoryDisk) Close(discard bool) error {
	_ = discard
	d.buf = nil
	d.start, d.end = 0, 0
	return nil
}
