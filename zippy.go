package zippy

// Method identifies the compression algorithm of an entry's payload. The
// values are ZIP method identifiers; which methods are actually usable is
// defined by the codec.
type Method uint16

const (
	MethodStore   Method = 0
	MethodDeflate Method = 8
	MethodZstd    Method = 93
	MethodXZ      Method = 95
)

func (m Method) String() string {
	switch m {
	case MethodStore:
		return "store"
	case MethodDeflate:
		return "deflate"
	case MethodZstd:
		return "zstd"
	case MethodXZ:
		return "xz"
	default:
		return "unknown"
	}
}

// ConflictPolicy governs behavior when a write target already exists.
type ConflictPolicy uint8

const (
	// OnConflictFail aborts with ErrExists, leaving the existing file
	// untouched.
	OnConflictFail ConflictPolicy = iota

	// OnConflictOverwrite truncates and replaces the existing file.
	OnConflictOverwrite

	// OnConflictSupersede replaces the existing file, keeping prior
	// versions where the filesystem supports versioning. On this platform
	// it behaves like OnConflictOverwrite.
	OnConflictSupersede
)

func (p ConflictPolicy) String() string {
	switch p {
	case OnConflictFail:
		return "fail"
	case OnConflictOverwrite:
		return "overwrite"
	case OnConflictSupersede:
		return "supersede"
	default:
		return "unknown"
	}
}

// CompatTag identifies which platform's attribute encoding an entry's stored
// attributes use.
type CompatTag uint16

const (
	TagFAT  CompatTag = 0
	TagUnix CompatTag = 3
)

func (t CompatTag) String() string {
	switch t {
	case TagFAT:
		return "fat"
	case TagUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// EncryptionMethod identifies the cipher protecting an entry's payload.
// Decryption is delegated to the codec; the default codec rejects
// encrypted entries.
type EncryptionMethod uint8

const (
	EncryptionNone EncryptionMethod = iota
	EncryptionZipCrypto
)

func (m EncryptionMethod) String() string {
	switch m {
	case EncryptionNone:
		return "none"
	case EncryptionZipCrypto:
		return "zipcrypto"
	default:
		return "unknown"
	}
}
