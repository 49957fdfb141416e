package zippy

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"

	"github.com/OrganicProgramming/zippy/internal/pathutil"
)

// provenanceComment tags containers built by the scanner.
const provenanceComment = "created by zippy"

// New normalizes a heterogeneous source into a container with freshly built
// entries. Supported sources:
//
//   - *Container: returned unchanged.
//   - []byte, *bytes.Buffer: one entry holding the buffer, named "-".
//   - io.Reader: one entry holding the open stream, named "-". The stream
//     is consumed once, at write time.
//   - string, concrete file path: one entry referencing the path; the
//     in-archive name is derived from the path's base name at write time.
//   - string, glob pattern: one entry per match, named relative to the
//     pattern's directory.
//   - string, directory: every contained file, recursively; names are
//     relative to the directory's parent, or to the directory itself with
//     ScanWithStripRoot.
//   - []string, []any: each element processed independently, entries
//     concatenated in input order.
//
// Anything else fails with ErrUnsupportedContent.
func New(src any, opts ...ScanOption) (*Container, error) {
	cfg := scanConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if c, ok := src.(*Container); ok {
		return c, nil
	}

	c := newContainer(cfg.fsys, cfg.codec)
	c.comment = provenanceComment
	if err := c.scan(src, &cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) scan(src any, cfg *scanConfig) error {
	switch v := src.(type) {
	case []byte:
		return c.addBuffer(v, cfg)
	case *bytes.Buffer:
		return c.addBuffer(v.Bytes(), cfg)
	case string:
		return c.scanPath(v, cfg)
	case []string:
		for _, p := range v {
			if err := c.scanPath(p, cfg); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, el := range v {
			if err := c.scan(el, cfg); err != nil {
				return err
			}
		}
		return nil
	case io.Reader:
		return c.add(&Entry{
			Name:      "-",
			Modified:  time.Now(),
			DiskIndex: -1,
			content:   contentReader,
			reader:    v,
		})
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedContent, src)
	}
}

func (c *Container) addBuffer(buf []byte, cfg *scanConfig) error {
	e := &Entry{
		Name:             "-",
		Modified:         time.Now(),
		UncompressedSize: uint64(len(buf)),
		DiskIndex:        -1,
		content:          contentBuffer,
		buf:              buf,
	}
	if cfg.digests {
		e.Digest = digest.FromBytes(buf)
	}
	return c.add(e)
}

// scanPath classifies one string source: an existing directory, an existing
// concrete file, or a glob pattern.
func (c *Container) scanPath(p string, cfg *scanConfig) error {
	info, err := c.fsys.Stat(p)
	switch {
	case err == nil && info.IsDir():
		root := filepath.Clean(p)
		base := filepath.Dir(root)
		if cfg.stripRoot {
			base = root
		}
		return c.scanDir(root, base, cfg)
	case err == nil:
		return c.addFile(p, info, "", cfg)
	case pathutil.HasGlobMeta(p):
		return c.scanPattern(p, cfg)
	default:
		return fmt.Errorf("scan %s: %w", p, err)
	}
}

// scanDir adds every regular file under root, at unbounded depth, named
// relative to base.
func (c *Container) scanDir(root, base string, cfg *scanConfig) error {
	return afero.Walk(c.fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		return c.addFile(path, info, filepath.ToSlash(rel), cfg)
	})
}

// scanPattern expands a glob pattern, one entry per match, named relative
// to the pattern's directory. The base may itself contain escaped
// metacharacters; the filesystem knows it by the literal name.
func (c *Container) scanPattern(p string, cfg *scanConfig) error {
	matches, err := afero.Glob(c.fsys, p)
	if err != nil {
		return fmt.Errorf("expand pattern %s: %w", p, err)
	}
	base := pathutil.UnescapeGlob(filepath.Dir(p))

	for _, m := range matches {
		info, err := c.fsys.Stat(m)
		if err != nil {
			return fmt.Errorf("stat match %s: %w", m, err)
		}
		rel, err := filepath.Rel(base, m)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", m, err)
		}
		name := filepath.ToSlash(rel)

		if info.IsDir() {
			if err := c.add(&Entry{
				Name:       name + "/",
				Modified:   info.ModTime(),
				Attributes: attributesFromMode(info.Mode()),
				DiskIndex:  -1,
			}); err != nil {
				return err
			}
			continue
		}
		if err := c.addFile(m, info, name, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) addFile(path string, info fs.FileInfo, name string, cfg *scanConfig) error {
	e := &Entry{
		Name:             name,
		Modified:         info.ModTime(),
		UncompressedSize: uint64(info.Size()),
		Attributes:       attributesFromMode(info.Mode()),
		DiskIndex:        -1,
		content:          contentPath,
		path:             path,
	}
	if cfg.digests {
		d, err := fileDigest(c.fsys, path)
		if err != nil {
			return err
		}
		e.Digest = d
	}
	return c.add(e)
}

func fileDigest(fsys afero.Fs, path string) (digest.Digest, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	defer f.Close()
	d, err := digest.FromReader(f)
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", path, err)
	}
	return d, nil
}
