// Package zippy models a ZIP archive as an in-memory container of entry
// metadata backed by one or more storage volumes (disks), and orchestrates
// building, extracting, and relocating such archives.
//
// A [Container] owns an ordered sequence of [Entry] values and an ordered
// sequence of [Disk] volumes. Entries reference their disk by index and
// carry a locator (offset and sizes) for their payload. The binary record
// work (headers, central directory, compression, CRC-32) is delegated to
// a [Codec]; the default codec handles store, deflate, zstd, and xz.
//
// # Quick start
//
// Build an archive from a directory tree and write it to a file:
//
//	c, err := zippy.Compress(ctx, "./src", "src.zip")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
// Extract an archive to a directory:
//
//	err := zippy.Extract(ctx, "src.zip", "./out")
//
// Open an archive and decode a single entry into memory:
//
//	c, err := zippy.Open("src.zip")
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//	data, err := c.Entries()[0].DecodeToBytes(nil)
//
// # Sources
//
// [New], [Compress], and [Extract] accept heterogeneous sources: an
// existing *Container, a concrete file path, a glob pattern, a directory
// tree, a raw []byte or *bytes.Buffer, an open io.Reader, or a list
// ([]string or []any) mixing any of these.
//
// # Resources
//
// Containers hold open file handles for stream-backed disks. Close is
// idempotent and releases every disk. [Container.MoveToMemory] relocates
// all disks into owned buffers, making the container independent of open
// handles at the cost of reading every disk fully.
//
// The package is not safe for concurrent use of a single Container;
// callers needing that must synchronize externally.
package zippy
