package zippy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/OrganicProgramming/zippy/internal/zipfmt"
)

// Codec is the collaborator that owns the archive's binary format:
// directory records, compression, encryption, and CRC-32. The container
// layer performs no byte-level format work itself.
type Codec interface {
	// ReadDirectory populates c's entries and comment from its disks.
	ReadDirectory(c *Container) error

	// Decode decompresses e's payload from its disk, delivering decoded
	// slices to sink in order, verifying size and checksum.
	Decode(e *Entry, sink Sink, password string) error

	// Encode serializes every entry of c (headers, payload, central
	// directory, trailer) to w, updating the entries' computed fields.
	Encode(ctx context.Context, c *Container, w io.Writer, password string) error
}

// zipCodec is the default Codec, backed by internal/zipfmt.
type zipCodec struct{}

func defaultCodec() Codec { return zipCodec{} }

func (zipCodec) ReadDirectory(c *Container) error {
	if len(c.disks) == 0 {
		return fmt.Errorf("%w: container has no disks", ErrFormat)
	}
	// The central directory lives on the final disk of a volume set.
	last := c.disks[len(c.disks)-1]
	dir, err := zipfmt.ReadDirectory(last, last.Size())
	if err != nil {
		return err
	}

	entries := make([]*Entry, 0, len(dir.Headers))
	for i := range dir.Headers {
		h := &dir.Headers[i]
		if h.DiskNumber >= len(c.disks) {
			return fmt.Errorf("%w: entry %q on missing disk %d", ErrFormat, h.Name, h.DiskNumber)
		}
		e := &Entry{
			Name:             strings.ReplaceAll(h.Name, `\`, "/"),
			Comment:          h.Comment,
			Method:           Method(h.Method),
			Modified:         h.Modified,
			CRC32:            h.CRC32,
			HasCRC32:         true,
			DiskIndex:        h.DiskNumber,
			Offset:           h.Offset,
			CompressedSize:   h.CompressedSize,
			UncompressedSize: h.UncompressedSize,
			Extra:            parseExtra(h.Extra),
			Version:          h.ReaderVersion,
			Attributes:       attributesFromHeader(h),
			content:          contentLocator,
			rawFlags:         h.Flags,
		}
		if h.Flags&0x1 != 0 {
			e.Encryption = EncryptionZipCrypto
		}
		entries = append(entries, e)
	}

	for _, e := range entries {
		if err := e.attach(c); err != nil {
			return err
		}
	}
	c.entries = entries
	c.comment = dir.Comment
	return nil
}

func (zipCodec) Decode(e *Entry, sink Sink, password string) error {
	c := e.container
	if c == nil || e.DiskIndex < 0 || e.DiskIndex >= len(c.disks) {
		return fmt.Errorf("%w: %q", ErrNoLocator, e.Name)
	}
	// ZipCrypto and AES ciphers are not wired; the password cannot help.
	_ = password

	h := zipfmt.Header{
		Name:             e.Name,
		Method:           uint16(e.Method),
		Flags:            e.rawFlags,
		CRC32:            e.CRC32,
		CompressedSize:   e.CompressedSize,
		UncompressedSize: e.UncompressedSize,
		Offset:           e.Offset,
	}
	return zipfmt.Decode(c.disks[e.DiskIndex], &h, sink)
}

func (zipCodec) Encode(ctx context.Context, c *Container, w io.Writer, password string) error {
	if password != "" {
		return fmt.Errorf("%w: no cipher available for encoding", ErrEncrypted)
	}

	files := make([]zipfmt.FileRecord, len(c.entries))
	for i, e := range c.entries {
		rec, err := fileRecord(e)
		if err != nil {
			return err
		}
		files[i] = rec
	}

	results, err := zipfmt.Write(ctx, w, files, c.comment)
	if err != nil {
		return err
	}

	// Record what the encoder computed. Entries re-encoded from an opened
	// archive keep their original locator, which still describes the
	// source disks; everything else now carries the written values.
	for i, e := range c.entries {
		if e.content == contentLocator {
			continue
		}
		e.Name = files[i].Name
		e.CRC32 = results[i].CRC32
		e.HasCRC32 = true
		e.CompressedSize = results[i].CompressedSize
		e.UncompressedSize = results[i].UncompressedSize
		e.Offset = results[i].Offset
	}
	return nil
}

// fileRecord adapts one entry to the format layer's neutral record.
func fileRecord(e *Entry) (zipfmt.FileRecord, error) {
	modified := e.Modified
	if modified.IsZero() {
		modified = time.Now()
	}
	attrs := e.Attributes
	if attrs.Raw == 0 && attrs.Mode != 0 {
		attrs = attributesFromMode(attrs.Mode)
	}

	rec := zipfmt.FileRecord{
		Header: zipfmt.Header{
			Name:          e.entryName(),
			Comment:       e.Comment,
			Method:        uint16(e.Method),
			Modified:      modified,
			Extra:         encodeExtra(e.Extra),
			ExternalAttrs: attrs.Raw,
			MadeByVersion: uint16(attrs.Tag)<<8 | 20,
		},
	}

	if e.IsDir() {
		if !strings.HasSuffix(rec.Name, "/") {
			rec.Name += "/"
		}
		rec.Method = uint16(MethodStore)
		return rec, nil
	}

	open, err := e.opener()
	if err != nil {
		return zipfmt.FileRecord{}, err
	}
	rec.Open = open
	return rec, nil
}

// opener builds the payload source for one entry at write time.
func (e *Entry) opener() (func() (io.ReadCloser, error), error) {
	switch e.content {
	case contentPath:
		fsys := e.container.fsys
		path := e.path
		return func() (io.ReadCloser, error) {
			return fsys.Open(path)
		}, nil
	case contentBuffer:
		buf := e.buf
		return func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}, nil
	case contentReader:
		r := e.reader
		return func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		}, nil
	case contentLocator:
		// Re-archiving an opened entry: decode it fully, then store the
		// plain bytes as the payload source.
		return func() (io.ReadCloser, error) {
			data, err := e.DecodeToBytes(nil)
			if err != nil {
				return nil, err
			}
			return io.NopCloser(bytes.NewReader(data)), nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: entry %q has no content", ErrUnsupportedContent, e.entryName())
	}
}
