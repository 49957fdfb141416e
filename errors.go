package zippy

import (
	"errors"

	"github.com/OrganicProgramming/zippy/internal/zipfmt"
)

// Sentinel errors.
var (
	// ErrDiskClosed is returned when an operation touches a disk whose
	// underlying stream has already been closed or relocated.
	ErrDiskClosed = errors.New("zippy: disk is closed")

	// ErrUnsupportedContent is returned when a source cannot be normalized
	// into a container.
	ErrUnsupportedContent = errors.New("zippy: unsupported content")

	// ErrExists is returned when a destination already exists and the
	// conflict policy forbids overwriting it.
	ErrExists = errors.New("zippy: destination already exists")

	// ErrReattached is returned when an entry attached to one container is
	// added to another.
	ErrReattached = errors.New("zippy: entry already attached to another container")

	// ErrInsecurePath is returned for entry names that would escape the
	// extraction root.
	ErrInsecurePath = errors.New("zippy: insecure entry name")

	// ErrNoLocator is returned when a payload operation needs an in-archive
	// locator the entry does not have.
	ErrNoLocator = errors.New("zippy: entry payload is not positioned in an archive")

	// ErrDigestMismatch is returned when an extracted file does not match
	// the entry's recorded content digest.
	ErrDigestMismatch = errors.New("zippy: content digest mismatch")
)

// Errors re-exported from the default codec so callers can match them
// without importing internal packages.
var (
	// ErrFormat is returned when a source is not a valid ZIP archive.
	ErrFormat = zipfmt.ErrFormat

	// ErrChecksum is returned when decoded bytes fail CRC-32 verification.
	ErrChecksum = zipfmt.ErrChecksum

	// ErrIncompletePayload is returned when the codec delivers a byte count
	// inconsistent with the entry's declared uncompressed size.
	ErrIncompletePayload = zipfmt.ErrIncomplete

	// ErrEncrypted is returned for encrypted entries; no cipher is wired.
	ErrEncrypted = zipfmt.ErrEncrypted

	// ErrZip64Unsupported is returned for archives needing ZIP64 extensions.
	ErrZip64Unsupported = zipfmt.ErrZip64

	// ErrUnknownMethod is returned for compression methods with no codec.
	ErrUnknownMethod = zipfmt.ErrUnknownMethod
)
