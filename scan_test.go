package zippy

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryNames(c *Container) []string {
	names := make([]string, 0, len(c.Entries()))
	for _, e := range c.Entries() {
		names = append(names, e.Name)
	}
	return names
}

func TestNewIdentity(t *testing.T) {
	t.Parallel()

	c := newContainer(nil, nil)
	got, err := New(c)
	require.NoError(t, err)
	assert.Same(t, c, got)
}

func TestScanDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"top.txt":          []byte("1"),
		"sub/mid.txt":      []byte("2"),
		"sub/deep/low.bin": []byte("3"),
	})

	// Default base is the parent of the root, so names keep the root
	// directory's own name.
	c, err := New(dir)
	require.NoError(t, err)
	root := filepath.Base(dir)
	assert.ElementsMatch(t, []string{
		root + "/top.txt",
		root + "/sub/mid.txt",
		root + "/sub/deep/low.bin",
	}, entryNames(c))

	// strip-root excludes the root directory's name.
	c, err = New(dir, ScanWithStripRoot(true))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"top.txt",
		"sub/mid.txt",
		"sub/deep/low.bin",
	}, entryNames(c))
	for _, name := range entryNames(c) {
		assert.False(t, strings.Contains(name, `\`))
	}
}

func TestScanConcreteFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "report.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))

	c, err := New(path)
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)

	e := c.Entries()[0]
	// The in-archive name stays unset until write time, when it is
	// derived from the path's base name.
	assert.Empty(t, e.Name)
	assert.Equal(t, "report.csv", e.entryName())
	assert.Equal(t, uint64(4), e.UncompressedSize)
}

func TestScanPattern(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"x1.txt":     []byte("x1"),
		"x2.txt":     []byte("x2"),
		"notes.md":   []byte("md"),
		"sub/x3.txt": []byte("nested, not matched"),
	})

	c, err := New(filepath.Join(dir, "*.txt"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x1.txt", "x2.txt"}, entryNames(c))
}

func TestScanBufferAndStream(t *testing.T) {
	t.Parallel()

	c, err := New([]byte("raw buffer"))
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "-", c.Entries()[0].Name)
	assert.Equal(t, uint64(10), c.Entries()[0].UncompressedSize)

	c, err = New(bytes.NewBufferString("buffered"))
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "-", c.Entries()[0].Name)

	c, err = New(strings.NewReader("streamed"))
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, "-", c.Entries()[0].Name)
}

func TestScanMixedList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "solo.txt")
	require.NoError(t, os.WriteFile(path, []byte("solo"), 0o644))

	c, err := New([]any{path, []byte("inline")})
	require.NoError(t, err)
	require.Len(t, c.Entries(), 2)
	// Input order is preserved.
	assert.Equal(t, "solo.txt", c.Entries()[0].entryName())
	assert.Equal(t, "-", c.Entries()[1].Name)
}

func TestScanStringList(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{"a/f1": []byte("1"), "b/f2": []byte("2")})

	c, err := New([]string{filepath.Join(dir, "a"), filepath.Join(dir, "b")})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/f1", "b/f2"}, entryNames(c))
}

func TestScanUnsupported(t *testing.T) {
	t.Parallel()

	_, err := New(42)
	require.ErrorIs(t, err, ErrUnsupportedContent)

	_, err = New(struct{}{})
	require.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestScanMissingPath(t *testing.T) {
	t.Parallel()

	_, err := New(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	require.Error(t, err)
}

func TestScanDigests(t *testing.T) {
	t.Parallel()

	content := []byte("digest me")
	dir := t.TempDir()
	path := filepath.Join(dir, "hashed.txt")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	c, err := New(path, ScanWithDigests(true))
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	assert.Equal(t, digest.FromBytes(content), c.Entries()[0].Digest)

	c, err = New(content, ScanWithDigests(true))
	require.NoError(t, err)
	assert.Equal(t, digest.FromBytes(content), c.Entries()[0].Digest)
}

func TestScanProvenanceComment(t *testing.T) {
	t.Parallel()

	c, err := New([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, provenanceComment, c.Comment())
}
