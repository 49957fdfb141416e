package zipfmt

import (
	"bytes"
	"context"
	"fmt"
	"hash/crc32"
	"io"
)

// FileRecord is one entry to serialize. Open yields the entry's payload
// bytes; a nil Open marks a directory entry, which is written with no
// payload.
type FileRecord struct {
	Header
	Open func() (io.ReadCloser, error)
}

// Result reports, per written entry, the values the encoder computed.
type Result struct {
	CRC32            uint32
	CompressedSize   uint64
	UncompressedSize uint64
	Offset           uint64
}

// Write serializes files to w as a single-disk ZIP archive: local headers
// and payloads in input order, then the central directory and the
// end-of-central-directory record. Results align with files by index.
//
// The context is checked between entries; cancellation mid-archive leaves
// whatever has been written in place.
func Write(ctx context.Context, w io.Writer, files []FileRecord, comment string) ([]Result, error) {
	if len(comment) > maxCommentLen {
		return nil, fmt.Errorf("%w: archive comment too long", ErrFormat)
	}

	cw := &countWriter{w: w}
	results := make([]Result, len(files))

	for i := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := writeEntry(cw, &files[i])
		if err != nil {
			return nil, err
		}
		results[i] = res
	}

	dirOffset := cw.n
	for i := range files {
		if err := writeCentralRecord(cw, &files[i].Header, &results[i]); err != nil {
			return nil, err
		}
	}
	dirSize := cw.n - dirOffset

	if err := writeEOCD(cw, len(files), dirSize, dirOffset, comment); err != nil {
		return nil, err
	}
	return results, nil
}

// writeEntry encodes one payload and emits its local header and data.
func writeEntry(cw *countWriter, f *FileRecord) (Result, error) {
	if len(f.Name) > 0xffff || len(f.Extra) > 0xffff {
		return Result{}, fmt.Errorf("%w: entry %q header field too long", ErrFormat, f.Name)
	}

	res := Result{Offset: cw.n}
	var data []byte
	if f.Open != nil {
		crc, usize, payload, err := encodePayload(f)
		if err != nil {
			return Result{}, err
		}
		res.CRC32 = crc
		res.UncompressedSize = usize
		res.CompressedSize = uint64(len(payload))
		data = payload
	}
	if res.CompressedSize > 0xffffffff || res.UncompressedSize > 0xffffffff || res.Offset > 0xffffffff {
		return Result{}, fmt.Errorf("%w: entry %q exceeds 4GiB limits", ErrZip64, f.Name)
	}

	flags := f.Flags &^ flagDataDescriptor
	if !isASCII(f.Name) || !isASCII(f.Comment) {
		flags |= flagUTF8
	}
	date, tm := dosTime(f.Modified)

	hdr := make([]byte, 0, localHeaderLen+len(f.Name)+len(f.Extra))
	hdr = put32(hdr, sigLocal)
	hdr = put16(hdr, readerVersionFor(f.Method))
	hdr = put16(hdr, flags)
	hdr = put16(hdr, f.Method)
	hdr = put16(hdr, tm)
	hdr = put16(hdr, date)
	hdr = put32(hdr, res.CRC32)
	hdr = put32(hdr, uint32(res.CompressedSize))
	hdr = put32(hdr, uint32(res.UncompressedSize))
	hdr = put16(hdr, uint16(len(f.Name)))
	hdr = put16(hdr, uint16(len(f.Extra)))
	hdr = append(hdr, f.Name...)
	hdr = append(hdr, f.Extra...)

	if _, err := cw.Write(hdr); err != nil {
		return Result{}, fmt.Errorf("write local header: %w", err)
	}
	if _, err := cw.Write(data); err != nil {
		return Result{}, fmt.Errorf("write entry payload: %w", err)
	}
	f.Flags = flags
	return res, nil
}

// encodePayload streams the record's content through the CRC-32 digest and
// the method's encoder into memory, so header fields are known before any
// archive bytes for the entry are emitted.
func encodePayload(f *FileRecord) (crc uint32, usize uint64, payload []byte, err error) {
	comp := compressor(f.Method)
	if comp == nil {
		return 0, 0, nil, fmt.Errorf("%w: method %d", ErrUnknownMethod, f.Method)
	}

	rc, err := f.Open()
	if err != nil {
		return 0, 0, nil, fmt.Errorf("open content for %q: %w", f.Name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	wc, err := comp(&buf)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("create encoder: %w", err)
	}

	digest := crc32.NewIEEE()
	n, err := io.Copy(wc, io.TeeReader(rc, digest))
	if err != nil {
		wc.Close()
		return 0, 0, nil, fmt.Errorf("encode %q: %w", f.Name, err)
	}
	if err := wc.Close(); err != nil {
		return 0, 0, nil, fmt.Errorf("close encoder: %w", err)
	}
	return digest.Sum32(), uint64(n), buf.Bytes(), nil
}

func writeCentralRecord(cw *countWriter, h *Header, res *Result) error {
	if len(h.Comment) > 0xffff {
		return fmt.Errorf("%w: entry %q comment too long", ErrFormat, h.Name)
	}
	date, tm := dosTime(h.Modified)

	madeBy := h.MadeByVersion
	if madeBy == 0 {
		madeBy = TagUnix<<8 | specVersion20
	}

	rec := make([]byte, 0, centralDirLen+len(h.Name)+len(h.Extra)+len(h.Comment))
	rec = put32(rec, sigCentral)
	rec = put16(rec, madeBy)
	rec = put16(rec, readerVersionFor(h.Method))
	rec = put16(rec, h.Flags)
	rec = put16(rec, h.Method)
	rec = put16(rec, tm)
	rec = put16(rec, date)
	rec = put32(rec, res.CRC32)
	rec = put32(rec, uint32(res.CompressedSize))
	rec = put32(rec, uint32(res.UncompressedSize))
	rec = put16(rec, uint16(len(h.Name)))
	rec = put16(rec, uint16(len(h.Extra)))
	rec = put16(rec, uint16(len(h.Comment)))
	rec = put16(rec, 0) // disk number start
	rec = put16(rec, h.InternalAttrs)
	rec = put32(rec, h.ExternalAttrs)
	rec = put32(rec, uint32(res.Offset))
	rec = append(rec, h.Name...)
	rec = append(rec, h.Extra...)
	rec = append(rec, h.Comment...)

	if _, err := cw.Write(rec); err != nil {
		return fmt.Errorf("write central directory record: %w", err)
	}
	return nil
}

func writeEOCD(cw *countWriter, entries int, dirSize, dirOffset uint64, comment string) error {
	if entries > 0xffff || dirSize > 0xffffffff || dirOffset > 0xffffffff {
		return fmt.Errorf("%w: too many entries or archive too large", ErrZip64)
	}

	rec := make([]byte, 0, eocdLen+len(comment))
	rec = put32(rec, sigEOCD)
	rec = put16(rec, 0) // this disk
	rec = put16(rec, 0) // directory start disk
	rec = put16(rec, uint16(entries))
	rec = put16(rec, uint16(entries))
	rec = put32(rec, uint32(dirSize))
	rec = put32(rec, uint32(dirOffset))
	rec = put16(rec, uint16(len(comment)))
	rec = append(rec, comment...)

	if _, err := cw.Write(rec); err != nil {
		return fmt.Errorf("write end of central directory: %w", err)
	}
	return nil
}

// countWriter tracks the archive offset as records are emitted.
type countWriter struct {
	w io.Writer
	n uint64
}

func (cw *countWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	return n, err
}
