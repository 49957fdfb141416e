package zippy

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OrganicProgramming/zippy/internal/zipfmt"
)

// rawArchive serializes records directly, bypassing the scanner, so tests
// can produce archives with names and shapes the scanner never emits.
func rawArchive(t *testing.T, records map[string][]byte) []byte {
	t.Helper()
	files := make([]zipfmt.FileRecord, 0, len(records))
	for name, content := range records {
		rec := zipfmt.FileRecord{
			Header: zipfmt.Header{Name: name, Method: zipfmt.MethodDeflate},
		}
		if content != nil {
			payload := content
			rec.Open = func() (io.ReadCloser, error) {
				return io.NopCloser(bytes.NewReader(payload)), nil
			}
		} else {
			rec.Header.Method = zipfmt.MethodStore
		}
		files = append(files, rec)
	}
	var buf bytes.Buffer
	_, err := zipfmt.Write(context.Background(), &buf, files, "")
	require.NoError(t, err)
	return buf.Bytes()
}

func TestExtractRoundtrip(t *testing.T) {
	t.Parallel()

	files := map[string][]byte{
		"readme.txt":    []byte("plain text"),
		"bin/blob.dat":  {0xde, 0xad, 0xbe, 0xef, 0x00},
		"deep/a/b/c.md": []byte("# nested"),
		"empty.txt":     {},
	}
	data := buildArchive(t, files)
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), data, dest))

	for name, want := range files {
		got, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestExtractFromPath(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, map[string][]byte{"f.txt": []byte("via path")})
	arc := filepath.Join(t.TempDir(), "arc.zip")
	require.NoError(t, os.WriteFile(arc, data, 0o644))
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), arc, dest))

	got, err := os.ReadFile(filepath.Join(dest, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("via path"), got)
}

func TestExtractConflictPolicies(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, map[string][]byte{"f.txt": []byte("incoming")})
	dest := t.TempDir()
	existing := filepath.Join(dest, "f.txt")
	require.NoError(t, os.WriteFile(existing, []byte("existing"), 0o644))

	// Default policy fails and leaves the existing file untouched.
	err := Extract(context.Background(), data, dest)
	require.ErrorIs(t, err, ErrExists)
	got, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("existing"), got)

	// Overwrite replaces it.
	require.NoError(t, Extract(context.Background(), data, dest,
		ExtractWithConflictPolicy(OnConflictOverwrite)))
	got, err = os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, []byte("incoming"), got)

	// Supersede behaves like overwrite here.
	require.NoError(t, Extract(context.Background(), data, dest,
		ExtractWithConflictPolicy(OnConflictSupersede)))
}

func TestExtractFailureKeepsEarlierFiles(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, map[string][]byte{
		"a.txt": []byte("first"),
		"z.txt": []byte("last"),
	})
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "z.txt"), []byte("blocker"), 0o644))

	err := Extract(context.Background(), data, dest)
	require.ErrorIs(t, err, ErrExists)

	// a.txt sorts before z.txt in archive order, so it was already
	// written; the failure does not roll it back.
	got, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)
}

func TestExtractLiteralMetacharacters(t *testing.T) {
	t.Parallel()

	data := rawArchive(t, map[string][]byte{
		"data[1].txt": []byte("bracketed"),
		"what?.txt":   []byte("question"),
	})
	if runtime.GOOS == "windows" {
		t.Skip("? is not a legal file name character on windows")
	}
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), data, dest))

	got, err := os.ReadFile(filepath.Join(dest, "data[1].txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("bracketed"), got)

	got, err = os.ReadFile(filepath.Join(dest, "what?.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("question"), got)
}

func TestExtractInsecureNames(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"../evil.txt", "a/../../evil.txt", "C:/evil.txt"} {
		data := rawArchive(t, map[string][]byte{name: []byte("x")})
		dest := t.TempDir()

		err := Extract(context.Background(), data, dest)
		require.ErrorIs(t, err, ErrInsecurePath, name)

		outside := filepath.Join(filepath.Dir(dest), "evil.txt")
		_, statErr := os.Stat(outside)
		assert.True(t, os.IsNotExist(statErr), name)
	}
}

func TestExtractDirectoryEntries(t *testing.T) {
	t.Parallel()

	data := rawArchive(t, map[string][]byte{
		"only-dir/": nil,
		"d/f.txt":   []byte("in d"),
	})
	dest := t.TempDir()

	require.NoError(t, Extract(context.Background(), data, dest))

	info, err := os.Stat(filepath.Join(dest, "only-dir"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	got, err := os.ReadFile(filepath.Join(dest, "d", "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, []byte("in d"), got)
}

func TestExtractRestoresPermissions(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	src := t.TempDir()
	path := filepath.Join(src, "run.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o750))

	var buf bytes.Buffer
	_, err := Compress(context.Background(), path, &buf)
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, Extract(context.Background(), buf.Bytes(), dest))

	info, err := os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())

	// Opting out leaves umask defaults.
	dest = t.TempDir()
	require.NoError(t, Extract(context.Background(), buf.Bytes(), dest,
		ExtractWithAttributes(false)))
	info, err = os.Stat(filepath.Join(dest, "run.sh"))
	require.NoError(t, err)
	assert.NotEqual(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestExtractVerifyDigests(t *testing.T) {
	t.Parallel()

	content := []byte("verified payload")
	data := buildArchive(t, map[string][]byte{"v.txt": content})

	c, err := OpenBytes(data)
	require.NoError(t, err)
	defer c.Close()

	// Digests are session state, not archive state; set them on the
	// opened container before extracting.
	e := entryByName(t, c, "v.txt")
	e.Digest = digest.FromBytes(content)

	dest := t.TempDir()
	require.NoError(t, c.Extract(context.Background(), dest,
		ExtractWithVerifyDigests(true)))

	e.Digest = digest.FromBytes([]byte("something else"))
	dest = t.TempDir()
	err = c.Extract(context.Background(), dest, ExtractWithVerifyDigests(true))
	require.ErrorIs(t, err, ErrDigestMismatch)
}

func TestExtractCancelled(t *testing.T) {
	t.Parallel()

	data := buildArchive(t, map[string][]byte{"f.txt": []byte("x")})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Extract(ctx, data, t.TempDir())
	require.ErrorIs(t, err, context.Canceled)
}
