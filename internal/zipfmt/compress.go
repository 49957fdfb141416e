package zipfmt

import (
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Decompressor wraps a compressed-payload reader with a decoding reader.
type Decompressor func(r io.Reader) io.ReadCloser

// Compressor wraps a payload writer with an encoding writer. The returned
// writer must be closed to flush trailing codec state.
type Compressor func(w io.Writer) (io.WriteCloser, error)

// decompressor returns the decoder for a method, or nil if none is wired.
func decompressor(method uint16) Decompressor {
	switch method {
	case MethodStore:
		return func(r io.Reader) io.ReadCloser { return io.NopCloser(r) }
	case MethodDeflate:
		return flate.NewReader
	case MethodZstd:
		return zstdDecompressor
	case MethodXZ:
		return xzDecompressor
	default:
		return nil
	}
}

// compressor returns the encoder for a method, or nil if none is wired.
func compressor(method uint16) Compressor {
	switch method {
	case MethodStore:
		return func(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }
	case MethodDeflate:
		return func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, flate.DefaultCompression)
		}
	case MethodZstd:
		return func(w io.Writer) (io.WriteCloser, error) {
			return zstd.NewWriter(w, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
		}
	case MethodXZ:
		return func(w io.Writer) (io.WriteCloser, error) {
			return xz.NewWriter(w)
		}
	default:
		return nil
	}
}

func zstdDecompressor(r io.Reader) io.ReadCloser {
	dec, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return errReadCloser{err}
	}
	return dec.IOReadCloser()
}

func xzDecompressor(r io.Reader) io.ReadCloser {
	xr, err := xz.NewReader(r)
	if err != nil {
		return errReadCloser{err}
	}
	return io.NopCloser(xr)
}

// errReadCloser defers a decoder construction error to the first read.
type errReadCloser struct{ err error }

func (e errReadCloser) Read([]byte) (int, error) { return 0, e.err }
func (e errReadCloser) Close() error             { return nil }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }
