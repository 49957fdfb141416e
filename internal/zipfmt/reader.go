package zipfmt

import (
	"fmt"
	"hash/crc32"
	"io"
)

// maxEOCDScan bounds the backwards search for the end-of-central-directory
// record: the fixed record plus the longest possible archive comment.
const maxEOCDScan = eocdLen + maxCommentLen

// ReadDirectory locates and parses the central directory of the archive in
// r, which holds size bytes. The directory must reside on the disk r
// represents (the final disk of a multi-volume set).
func ReadDirectory(r io.ReaderAt, size int64) (*Directory, error) {
	eocd, err := findEOCD(r, size)
	if err != nil {
		return nil, err
	}

	records := int(le16(eocd[10:]))
	dirSize := int64(le32(eocd[12:]))
	dirOffset := int64(le32(eocd[16:]))
	if records == 0xffff || le32(eocd[12:]) == 0xffffffff || le32(eocd[16:]) == 0xffffffff {
		return nil, ErrZip64
	}
	if dirOffset+dirSize > size {
		return nil, fmt.Errorf("%w: central directory out of bounds", ErrFormat)
	}

	buf := make([]byte, dirSize)
	if _, err := r.ReadAt(buf, dirOffset); err != nil {
		return nil, fmt.Errorf("read central directory: %w", err)
	}

	dir := &Directory{
		Headers: make([]Header, 0, records),
		Comment: string(eocd[eocdLen:]),
	}
	for i := 0; i < records; i++ {
		h, rest, err := parseCentralRecord(buf)
		if err != nil {
			return nil, err
		}
		dir.Headers = append(dir.Headers, h)
		buf = rest
	}
	return dir, nil
}

// findEOCD scans backwards from the end of r for the end-of-central-directory
// record and returns it including the trailing comment bytes.
func findEOCD(r io.ReaderAt, size int64) ([]byte, error) {
	if size < eocdLen {
		return nil, ErrFormat
	}
	scan := int64(maxEOCDScan)
	if scan > size {
		scan = size
	}
	tail := make([]byte, scan)
	if _, err := r.ReadAt(tail, size-scan); err != nil {
		return nil, fmt.Errorf("read archive tail: %w", err)
	}

	for i := len(tail) - eocdLen; i >= 0; i-- {
		if le32(tail[i:]) != sigEOCD {
			continue
		}
		rec := tail[i:]
		commentLen := int(le16(rec[20:]))
		// A stray signature inside entry data will not have a comment
		// length that lands exactly on the end of the archive.
		if eocdLen+commentLen != len(rec) {
			continue
		}
		if i >= 20 && le32(tail[i-20:]) == sigEOCD64Loc {
			return nil, ErrZip64
		}
		return rec, nil
	}
	return nil, ErrFormat
}

// parseCentralRecord decodes one central directory record from buf and
// returns the remaining bytes.
func parseCentralRecord(buf []byte) (Header, []byte, error) {
	if len(buf) < centralDirLen {
		return Header{}, nil, fmt.Errorf("%w: truncated central directory", ErrFormat)
	}
	if le32(buf) != sigCentral {
		return Header{}, nil, fmt.Errorf("%w: bad central directory signature", ErrFormat)
	}

	csize := le32(buf[20:])
	usize := le32(buf[24:])
	offset := le32(buf[42:])
	if csize == 0xffffffff || usize == 0xffffffff || offset == 0xffffffff {
		return Header{}, nil, ErrZip64
	}

	nameLen := int(le16(buf[28:]))
	extraLen := int(le16(buf[30:]))
	commentLen := int(le16(buf[32:]))
	if len(buf) < centralDirLen+nameLen+extraLen+commentLen {
		return Header{}, nil, fmt.Errorf("%w: truncated central directory record", ErrFormat)
	}

	h := Header{
		MadeByVersion:    le16(buf[4:]),
		ReaderVersion:    le16(buf[6:]),
		Flags:            le16(buf[8:]),
		Method:           le16(buf[10:]),
		Modified:         timeFromDos(le16(buf[14:]), le16(buf[12:])),
		CRC32:            le32(buf[16:]),
		CompressedSize:   uint64(csize),
		UncompressedSize: uint64(usize),
		DiskNumber:       int(le16(buf[34:])),
		InternalAttrs:    le16(buf[36:]),
		ExternalAttrs:    le32(buf[38:]),
		Offset:           uint64(offset),
	}
	rest := buf[centralDirLen:]
	h.Name = string(rest[:nameLen])
	h.Extra = append([]byte(nil), rest[nameLen:nameLen+extraLen]...)
	h.Comment = string(rest[nameLen+extraLen : nameLen+extraLen+commentLen])
	return h, rest[nameLen+extraLen+commentLen:], nil
}

// Decode reads the entry described by h from r, decompresses it, and writes
// the payload to sink. The sink reports how many bytes it consumed per
// slice; short consumption surfaces as io.ErrShortWrite. The decoded byte
// count must equal h.UncompressedSize and must match the recorded CRC-32.
func Decode(r io.ReaderAt, h *Header, sink io.Writer) error {
	if h.Flags&flagEncrypted != 0 {
		return ErrEncrypted
	}

	var local [localHeaderLen]byte
	if _, err := r.ReadAt(local[:], int64(h.Offset)); err != nil {
		return fmt.Errorf("read local header: %w", err)
	}
	if le32(local[:]) != sigLocal {
		return fmt.Errorf("%w: bad local header signature", ErrFormat)
	}
	nameLen := int64(le16(local[26:]))
	extraLen := int64(le16(local[28:]))
	dataOff := int64(h.Offset) + localHeaderLen + nameLen + extraLen

	dec := decompressor(h.Method)
	if dec == nil {
		return fmt.Errorf("%w: method %d", ErrUnknownMethod, h.Method)
	}
	rc := dec(io.NewSectionReader(r, dataOff, int64(h.CompressedSize)))
	defer rc.Close()

	digest := crc32.NewIEEE()
	// The extra byte detects payloads longer than declared without
	// letting a hostile stream write unbounded output.
	n, err := io.Copy(io.MultiWriter(sink, digest), io.LimitReader(rc, int64(h.UncompressedSize)+1))
	if err != nil {
		return fmt.Errorf("decode %q: %w", h.Name, err)
	}
	if uint64(n) != h.UncompressedSize {
		return fmt.Errorf("%w: %q declared %d bytes, decoded %d", ErrIncomplete, h.Name, h.UncompressedSize, n)
	}
	if digest.Sum32() != h.CRC32 {
		return fmt.Errorf("%w: %q", ErrChecksum, h.Name)
	}
	return nil
}
