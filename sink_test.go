package zippy

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapStore is a ByteStore with no slice representation, forcing the
// elementwise copy path.
type mapStore struct {
	bytes map[int]byte
	size  int
}

func newMapStore(size int) *mapStore {
	return &mapStore{bytes: make(map[int]byte, size), size: size}
}

func (s *mapStore) SetByte(i int, v byte) { s.bytes[i] = v }
func (s *mapStore) Len() int              { return s.size }

func (s *mapStore) contents() []byte {
	out := make([]byte, s.size)
	for i, v := range s.bytes {
		out[i] = v
	}
	return out
}

func TestCopyStrategiesEquivalent(t *testing.T) {
	t.Parallel()

	payloads := [][]byte{
		nil,
		{},
		[]byte("x"),
		[]byte("the quick brown fox"),
		bytes.Repeat([]byte{0x00, 0xff, 0x80}, 1000),
	}

	for _, payload := range payloads {
		slice := SliceStore(make([]byte, len(payload)))
		elem := newMapStore(len(payload))

		bulkSink := newVectorSink(slice)
		elemSink := newVectorSink(elem)

		// Deliver in uneven slices, as a codec would.
		for off := 0; off < len(payload); {
			end := off + 7
			if end > len(payload) {
				end = len(payload)
			}
			n, err := bulkSink.Write(payload[off:end])
			require.NoError(t, err)
			require.Equal(t, end-off, n)
			n, err = elemSink.Write(payload[off:end])
			require.NoError(t, err)
			require.Equal(t, end-off, n)
			off = end
		}

		assert.True(t, bytes.Equal([]byte(slice), elem.contents()))
		assert.True(t, bytes.Equal(payload, elem.contents()))
	}
}

func TestVectorSinkStrategySelection(t *testing.T) {
	t.Parallel()

	// Strategy is picked once at construction: bulk for slices, the
	// portable path for everything else.
	s := newVectorSink(SliceStore(make([]byte, 4)))
	n, err := s.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	m := newVectorSink(newMapStore(4))
	n, err = m.Write([]byte("abcd"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestVectorSinkOverflow(t *testing.T) {
	t.Parallel()

	s := newVectorSink(SliceStore(make([]byte, 3)))
	n, err := s.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Write([]byte("cd"))
	require.ErrorIs(t, err, ErrIncompletePayload)
}

func TestDecodeToBytesDestinations(t *testing.T) {
	t.Parallel()

	content := []byte("decode into several destinations")
	data := buildArchive(t, map[string][]byte{"d.bin": content})
	c, err := OpenBytes(data)
	require.NoError(t, err)
	defer c.Close()
	e := entryByName(t, c, "d.bin")

	// Freshly allocated.
	got, err := e.DecodeToBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// Caller-supplied slice of exactly the right size.
	dst := make([]byte, len(content))
	got, err = e.DecodeToBytes(dst)
	require.NoError(t, err)
	assert.Equal(t, content, dst)
	assert.Equal(t, content, got)

	// Wrong-sized slice is rejected before any decode work.
	_, err = e.DecodeToBytes(make([]byte, len(content)-1))
	require.Error(t, err)

	// Arbitrary ByteStore goes through the elementwise path.
	store := newMapStore(len(content))
	got, err = e.DecodeToBytes(store)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, content, store.contents())

	// Unsupported destination type.
	_, err = e.DecodeToBytes(42)
	require.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestDecodeToBytesZeroLength(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, map[string][]byte{"empty": {}})
	c, err := OpenBytes(data)
	require.NoError(t, err)
	defer c.Close()
	e := entryByName(t, c, "empty")

	got, err := e.DecodeToBytes(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	store := newMapStore(0)
	_, err = e.DecodeToBytes(store)
	require.NoError(t, err)
	assert.Empty(t, store.contents())
}

func TestDecodeDetachedEntry(t *testing.T) {
	t.Parallel()

	e := &Entry{Name: "loose", DiskIndex: -1}
	_, err := e.DecodeToBytes(nil)
	require.ErrorIs(t, err, ErrNoLocator)

	err = e.DecodeToWriter(&bytes.Buffer{})
	require.ErrorIs(t, err, ErrNoLocator)
}
