package zippy

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// Compress normalizes src into a container (anything New accepts) and
// writes it as an archive to dest under the conflict policy.
//
// dest may be a file path, an io.Writer, or a *bytes.Buffer. Path and
// io.WriterAt destinations additionally accept byte-range bounds
// (CompressWithRange) for partial-target writes.
//
// This component does no byte-level format work: serialization of headers,
// payloads, central directory, and trailer is delegated entirely to the
// codec. The returned container is src itself when src was already a
// container; its entries carry the codec's computed sizes, offsets, and
// checksums after a successful write.
func Compress(ctx context.Context, src any, dest any, opts ...CompressOption) (*Container, error) {
	cfg := defaultCompressConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c, err := New(src,
		ScanWithStripRoot(cfg.stripRoot),
		ScanWithFs(cfg.fsys),
		ScanWithDigests(cfg.digests),
	)
	if err != nil {
		return nil, err
	}

	// Scanned entries default to deflate; entries opened from an archive
	// keep their recorded method.
	for _, e := range c.entries {
		if e.content != contentLocator && !e.IsDir() {
			if cfg.methodSet || e.Method == MethodStore {
				e.Method = cfg.method
			}
		}
	}

	w, closeDest, err := openTarget(&cfg, dest)
	if err != nil {
		return nil, err
	}

	encodeErr := c.codec.Encode(ctx, c, w, cfg.password)
	closeErr := closeDest()
	if encodeErr != nil {
		return nil, encodeErr
	}
	if closeErr != nil {
		return nil, closeErr
	}
	return c, nil
}

// openTarget scopes the destination resource: a path opened under the
// conflict policy and range bounds, or a caller-supplied writer. The
// returned func releases whatever was acquired here.
func openTarget(cfg *compressConfig, dest any) (io.Writer, func() error, error) {
	noop := func() error { return nil }

	switch v := dest.(type) {
	case string:
		return openPathTarget(cfg, v)
	case *bytes.Buffer:
		return v, noop, nil
	case io.WriterAt:
		if cfg.rangeStart >= 0 {
			return boundWriter(io.NewOffsetWriter(v, cfg.rangeStart), cfg), noop, nil
		}
		if w, ok := v.(io.Writer); ok {
			return w, noop, nil
		}
		return nil, nil, fmt.Errorf("%w: %T", ErrUnsupportedContent, dest)
	case io.Writer:
		if cfg.rangeStart >= 0 {
			return nil, nil, fmt.Errorf("%w: range bounds need a path or io.WriterAt destination", ErrUnsupportedContent)
		}
		return v, noop, nil
	default:
		return nil, nil, fmt.Errorf("%w: %T", ErrUnsupportedContent, dest)
	}
}

func openPathTarget(cfg *compressConfig, path string) (io.Writer, func() error, error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch {
	case cfg.rangeStart >= 0:
		// Partial-target write: the rest of the file must survive.
	case cfg.conflict == OnConflictFail:
		flags |= os.O_EXCL
	default:
		flags |= os.O_TRUNC
	}

	f, err := cfg.fsys.OpenFile(path, flags, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, nil, fmt.Errorf("%w: %s", ErrExists, path)
		}
		return nil, nil, fmt.Errorf("open destination: %w", err)
	}

	var w io.Writer = f
	if cfg.rangeStart >= 0 {
		if _, err := f.Seek(cfg.rangeStart, io.SeekStart); err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("seek destination: %w", err)
		}
		w = boundWriter(f, cfg)
	}
	return w, f.Close, nil
}

// boundWriter enforces the range's upper bound, when one is set.
func boundWriter(w io.Writer, cfg *compressConfig) io.Writer {
	if cfg.rangeEnd < 0 {
		return w
	}
	return &limitedWriter{w: w, remaining: cfg.rangeEnd - cfg.rangeStart}
}

// limitedWriter fails writes that would exceed the byte-range bound.
type limitedWriter struct {
	w         io.Writer
	remaining int64
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	if int64(len(p)) > lw.remaining {
		return 0, fmt.Errorf("zippy: write exceeds range bound by %d bytes", int64(len(p))-lw.remaining)
	}
	n, err := lw.w.Write(p)
	lw.remaining -= int64(n)
	return n, err
}
