package zippy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/afero"

	"github.com/OrganicProgramming/zippy/internal/pathutil"
)

// Extract normalizes src into a container (opening it for the duration of
// the call if needed) and extracts every entry under destDir.
func Extract(ctx context.Context, src any, destDir string, opts ...ExtractOption) error {
	cfg := defaultExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	c, owned, err := openSource(src, WithFs(cfg.fsys))
	if err != nil {
		return err
	}
	if owned {
		defer c.Close()
	}
	return c.extract(ctx, destDir, &cfg)
}

// Extract writes every entry of the container under destDir, in archive
// order. Directories named by entries are created; file entries are decoded
// through the codec under the conflict policy; attributes are restored when
// requested and the entry's compatibility tag matches this platform.
//
// Any entry's failure aborts the whole extraction. Files already written
// stay as written; there is no rollback.
func (c *Container) Extract(ctx context.Context, destDir string, opts ...ExtractOption) error {
	cfg := defaultExtractConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return c.extract(ctx, destDir, &cfg)
}

func (c *Container) extract(ctx context.Context, destDir string, cfg *extractConfig) error {
	for _, e := range c.entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.extractEntry(e, destDir, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (c *Container) extractEntry(e *Entry, destDir string, cfg *extractConfig) error {
	name := pathutil.Normalize(e.Name)
	if !pathutil.Valid(name) {
		return fmt.Errorf("%w: %q", ErrInsecurePath, e.Name)
	}

	// Metacharacters are escaped around the join so a pattern-matching
	// path layer cannot expand them; the escape never reaches the
	// materialized name.
	joined := filepath.Join(destDir, filepath.FromSlash(pathutil.EscapeGlob(name)))
	dest := pathutil.UnescapeGlob(joined)

	if e.IsDir() {
		if err := cfg.fsys.MkdirAll(dest, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dest, err)
		}
		return nil
	}
	if err := cfg.fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", filepath.Dir(dest), err)
	}

	if err := e.DecodeToFile(dest,
		DecodeWithConflictPolicy(cfg.conflict),
		DecodeWithPassword(cfg.password),
		decodeWithFs(cfg.fsys),
	); err != nil {
		return err
	}

	if cfg.verifyDigests && e.Digest != "" {
		if err := verifyFileDigest(cfg.fsys, dest, e.Digest); err != nil {
			return err
		}
	}

	// Restoration is silently skipped when the attribute encoding belongs
	// to another platform; that is a known no-op, not a fault. Ownership
	// and other extended attributes are never restored.
	if cfg.restoreAttrs && e.Attributes.Tag == platformTag {
		if err := restoreAttributes(cfg.fsys, dest, e); err != nil {
			return fmt.Errorf("restore attributes for %s: %w", dest, err)
		}
	}
	return nil
}

func verifyFileDigest(fsys afero.Fs, path string, want digest.Digest) error {
	f, err := fsys.Open(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	defer f.Close()
	got, err := digest.FromReader(f)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if got != want {
		return fmt.Errorf("%w: %s", ErrDigestMismatch, path)
	}
	return nil
}
