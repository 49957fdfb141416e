// Package zipfmt reads and writes ZIP binary records: local file headers,
// the central directory, and the end-of-central-directory record.
//
// The package works on neutral types (Header, FileRecord) so the container
// layer above it can adapt its own model without an import cycle. ZIP64
// archives are detected and rejected; encrypted entries are detected and
// rejected, since no cipher is wired in.
package zipfmt

import (
	"encoding/binary"
	"errors"
	"time"
)

// Sentinel errors.
var (
	// ErrFormat is returned when the byte stream is not a valid ZIP archive.
	ErrFormat = errors.New("zip: not a valid zip archive")

	// ErrChecksum is returned when decoded payload bytes fail CRC-32 verification.
	ErrChecksum = errors.New("zip: checksum mismatch")

	// ErrIncomplete is returned when the decoded byte count disagrees with
	// the declared uncompressed size.
	ErrIncomplete = errors.New("zip: payload size mismatch")

	// ErrEncrypted is returned for entries that require a cipher.
	ErrEncrypted = errors.New("zip: encrypted entry not supported")

	// ErrZip64 is returned for archives using ZIP64 extensions.
	ErrZip64 = errors.New("zip: zip64 archives not supported")

	// ErrUnknownMethod is returned for compression methods with no codec.
	ErrUnknownMethod = errors.New("zip: unsupported compression method")
)

// Compression method identifiers from APPNOTE.TXT section 4.4.5.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
	MethodZstd    uint16 = 93
	MethodXZ      uint16 = 95
)

// Record signatures and fixed sizes.
const (
	sigLocal       uint32 = 0x04034b50
	sigCentral     uint32 = 0x02014b50
	sigEOCD        uint32 = 0x06054b50
	sigEOCD64Loc   uint32 = 0x07064b50
	localHeaderLen        = 30
	centralDirLen         = 46
	eocdLen               = 22
	maxCommentLen         = 0xffff
)

// General purpose flag bits.
const (
	flagEncrypted      uint16 = 0x0001
	flagDataDescriptor uint16 = 0x0008
	flagUTF8           uint16 = 0x0800
)

// Version-made-by host tags (upper byte of the made-by field).
const (
	TagFAT  uint16 = 0
	TagUnix uint16 = 3
)

// specVersion is the lower byte of version fields: 2.0 covers store and
// deflate, 6.3 is required for the newer methods.
const (
	specVersion20 uint16 = 20
	specVersion63 uint16 = 63
)

// Header describes one entry as recorded in the central directory.
type Header struct {
	Name             string
	Comment          string
	Extra            []byte
	Method           uint16
	Flags            uint16
	Modified         time.Time
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64

	// Offset is the local header position within the entry's disk.
	Offset     uint64
	DiskNumber int

	MadeByVersion uint16
	ReaderVersion uint16
	InternalAttrs uint16
	ExternalAttrs uint32
}

// MadeByTag returns the host tag of the system that recorded the entry's
// external attributes.
func (h *Header) MadeByTag() uint16 {
	return h.MadeByVersion >> 8
}

// Directory is the parsed central directory of one archive.
type Directory struct {
	Headers []Header
	Comment string
}

// readerVersionFor returns the minimum extractor version for a method.
func readerVersionFor(method uint16) uint16 {
	if method == MethodStore || method == MethodDeflate {
		return specVersion20
	}
	return specVersion63
}

// dosTime converts t to MSDOS date and time words. Timestamps before the
// MSDOS epoch (1980) clamp to it; resolution is two seconds.
func dosTime(t time.Time) (date, tm uint16) {
	if t.Year() < 1980 {
		return 1<<5 | 1, 0 // 1980-01-01 00:00:00
	}
	date = uint16(t.Year()-1980)<<9 | uint16(t.Month())<<5 | uint16(t.Day())
	tm = uint16(t.Hour())<<11 | uint16(t.Minute())<<5 | uint16(t.Second()/2)
	return date, tm
}

// timeFromDos converts MSDOS date and time words to a local time.Time.
func timeFromDos(date, tm uint16) time.Time {
	return time.Date(
		int(date>>9)+1980,
		time.Month(date>>5&0x0f),
		int(date&0x1f),
		int(tm>>11),
		int(tm>>5&0x3f),
		int(tm&0x1f)*2,
		0,
		time.Local,
	)
}

// isASCII reports whether s contains only 7-bit characters, deciding
// whether the UTF-8 name flag is needed.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// le16/le32 read little-endian words from b.
func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func le32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

// put16/put32 append little-endian words to b.
func put16(b []byte, v uint16) []byte { return binary.LittleEndian.AppendUint16(b, v) }
func put32(b []byte, v uint32) []byte { return binary.LittleEndian.AppendUint32(b, v) }
