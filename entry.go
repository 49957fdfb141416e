package zippy

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencontainers/go-digest"

	"github.com/OrganicProgramming/zippy/internal/zipfmt"
)

// ExtraField is one opaque format-specific metadata block attached to an
// entry. Blocks are kept in archive order and round-tripped untouched.
type ExtraField struct {
	ID   uint16
	Data []byte
}

// Attributes carries an entry's platform file attributes: the compatibility
// tag naming which platform's encoding applies, the raw attribute word, and
// the decoded native form.
type Attributes struct {
	Tag  CompatTag
	Raw  uint32
	Mode fs.FileMode
}

// contentKind discriminates the entry content union.
type contentKind uint8

const (
	contentNone    contentKind = iota
	contentPath                // filesystem path, pending write
	contentLocator             // positioned in an archive disk, ready to decode
	contentBuffer              // raw in-memory payload
	contentReader              // raw open stream, consumed once
)

// Entry is one archived item: metadata plus a locator for its content.
//
// Entries are created either by scanning filesystem sources (content is a
// path, buffer, or stream pending write) or by opening an existing archive
// (content is an in-archive locator). An entry belongs to at most one
// container for its lifetime.
type Entry struct {
	// Name is the in-archive file name, always slash-separated.
	Name    string
	Comment string

	Method     Method
	Encryption EncryptionMethod

	// Modified defaults to the entry's creation time.
	Modified time.Time

	// CRC32 is populated by the codec after a decode or encode; HasCRC32
	// reports whether it is meaningful.
	CRC32    uint32
	HasCRC32 bool

	// DiskIndex addresses the owning container's disk sequence; -1 until
	// the entry is positioned.
	DiskIndex        int
	Offset           uint64
	CompressedSize   uint64
	UncompressedSize uint64

	Extra      []ExtraField
	Version    uint16
	Attributes Attributes

	// Digest optionally records the content's SHA-256, populated by the
	// scanner on request and checked during extraction.
	Digest digest.Digest

	container *Container
	content   contentKind
	path      string
	buf       []byte
	reader    io.Reader
	rawFlags  uint16
}

// attach sets the entry's non-owning container back-reference. An entry
// already attached elsewhere must not be reattached.
func (e *Entry) attach(c *Container) error {
	if e.container != nil && e.container != c {
		return ErrReattached
	}
	e.container = c
	return nil
}

// Container returns the owning container, or nil for a detached entry.
func (e *Entry) Container() *Container {
	return e.container
}

// IsDir reports whether the entry represents a directory, from either its
// decoded attributes or the trailing-slash name convention.
func (e *Entry) IsDir() bool {
	return e.Attributes.Mode.IsDir() || strings.HasSuffix(e.Name, "/")
}

// entryName resolves the name to record at write time: the stored name, or
// the base of a pending path, or the placeholder for anonymous buffers and
// streams.
func (e *Entry) entryName() string {
	if e.Name != "" {
		return e.Name
	}
	if e.content == contentPath {
		return filepath.Base(e.path)
	}
	return "-"
}

// Unix file type bits from sys/stat.h, used in the upper half of external
// attributes by Unix-made archives.
const (
	sIFMT  = 0xf000
	sIFDIR = 0x4000
	sIFREG = 0x8000
	sIFLNK = 0xa000
)

// MSDOS attribute bits from the lower byte of external attributes.
const (
	msdosReadOnly = 0x01
	msdosDir      = 0x10
)

// attributesFromHeader decodes the native attribute form from a central
// directory record.
func attributesFromHeader(h *zipfmt.Header) Attributes {
	a := Attributes{Tag: CompatTag(h.MadeByTag()), Raw: h.ExternalAttrs}
	switch a.Tag {
	case TagUnix:
		a.Mode = unixModeToFS(h.ExternalAttrs >> 16)
	default:
		a.Mode = 0o666
		if h.ExternalAttrs&msdosReadOnly != 0 {
			a.Mode = 0o444
		}
	}
	if h.ExternalAttrs&msdosDir != 0 || strings.HasSuffix(h.Name, "/") {
		a.Mode |= fs.ModeDir
	}
	return a
}

// unixModeToFS converts Unix st_mode bits to an fs.FileMode.
func unixModeToFS(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)
	switch m & sIFMT {
	case sIFDIR:
		mode |= fs.ModeDir
	case sIFLNK:
		mode |= fs.ModeSymlink
	}
	return mode
}

// fsModeToUnix converts an fs.FileMode to Unix st_mode bits.
func fsModeToUnix(mode fs.FileMode) uint32 {
	m := uint32(mode.Perm())
	switch {
	case mode.IsDir():
		m |= sIFDIR
	case mode&fs.ModeSymlink != 0:
		m |= sIFLNK
	default:
		m |= sIFREG
	}
	return m
}

// attributesFromMode builds Unix-tagged attributes for a scanned file.
func attributesFromMode(mode fs.FileMode) Attributes {
	raw := fsModeToUnix(mode) << 16
	if mode.IsDir() {
		raw |= msdosDir
	}
	return Attributes{Tag: TagUnix, Raw: raw, Mode: mode}
}

// parseExtra splits raw extra-field bytes into typed blocks. Truncated
// trailing bytes are preserved as a final block with the bytes as-is.
func parseExtra(raw []byte) []ExtraField {
	if len(raw) == 0 {
		return nil
	}
	var fields []ExtraField
	for len(raw) >= 4 {
		id := uint16(raw[0]) | uint16(raw[1])<<8
		size := int(uint16(raw[2]) | uint16(raw[3])<<8)
		if 4+size > len(raw) {
			break
		}
		fields = append(fields, ExtraField{ID: id, Data: append([]byte(nil), raw[4:4+size]...)})
		raw = raw[4+size:]
	}
	if len(raw) > 0 {
		fields = append(fields, ExtraField{Data: append([]byte(nil), raw...)})
	}
	return fields
}

// encodeExtra serializes typed blocks back to raw extra-field bytes.
func encodeExtra(fields []ExtraField) []byte {
	if len(fields) == 0 {
		return nil
	}
	var raw []byte
	for _, f := range fields {
		raw = append(raw, byte(f.ID), byte(f.ID>>8), byte(len(f.Data)), byte(len(f.Data)>>8))
		raw = append(raw, f.Data...)
	}
	return raw
}
