package zippy

import "fmt"

// Sink receives successive decoded payload slices from the codec, in
// strictly increasing offset order, until the entry's uncompressed size has
// been delivered. Write returns how many bytes were consumed; consuming
// fewer than len(p) signals the codec to abort with a short-write error.
//
// Any io.Writer satisfies Sink.
type Sink interface {
	Write(p []byte) (n int, err error)
}

// ByteStore is a random-access byte destination for DecodeToBytes. A plain
// []byte destination (wrapped as SliceStore) permits the bulk copy
// strategy; any other implementation is filled through the portable
// elementwise path.
type ByteStore interface {
	SetByte(i int, v byte)
	Len() int
}

// SliceStore adapts a []byte as a ByteStore.
type SliceStore []byte

func (s SliceStore) SetByte(i int, v byte) { s[i] = v }
func (s SliceStore) Len() int              { return len(s) }

// copyFunc copies p into dst at off and returns the bytes copied. The two
// implementations must produce identical stores for identical input.
type copyFunc func(dst ByteStore, off int, p []byte) int

// copyBulk copies the whole slice as one contiguous region. Only valid for
// SliceStore destinations.
func copyBulk(dst ByteStore, off int, p []byte) int {
	return copy(dst.(SliceStore)[off:], p)
}

// copyElementwise copies byte by byte through the ByteStore interface; the
// portable fallback for any destination representation.
func copyElementwise(dst ByteStore, off int, p []byte) int {
	n := dst.Len() - off
	if n > len(p) {
		n = len(p)
	}
	for i := 0; i < n; i++ {
		dst.SetByte(off+i, p[i])
	}
	return n
}

// vectorSink fills a fixed-size ByteStore with decoded bytes, advancing a
// cursor per slice. The copy strategy is selected once at construction, by
// whether the destination's concrete representation permits a bulk copy;
// it is never re-checked per slice.
type vectorSink struct {
	store  ByteStore
	cursor int
	copyAt copyFunc
}

func newVectorSink(store ByteStore) *vectorSink {
	cp := copyElementwise
	if _, ok := store.(SliceStore); ok {
		cp = copyBulk
	}
	return &vectorSink{store: store, copyAt: cp}
}

func (s *vectorSink) Write(p []byte) (int, error) {
	if s.cursor+len(p) > s.store.Len() {
		return 0, fmt.Errorf("%w: payload exceeds destination buffer", ErrIncompletePayload)
	}
	n := s.copyAt(s.store, s.cursor, p)
	s.cursor += n
	return n, nil
}
