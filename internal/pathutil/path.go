// Package pathutil normalizes and sanitizes archive entry names.
//
// Entry names are always slash-separated and archive-relative. The helpers
// here convert user- or archive-supplied paths into that form and guard the
// places where a literal path meets a glob-aware API.
package pathutil

import "strings"

// globMeta is the set of characters that pattern-matching path operations
// treat specially.
const globMeta = `*?[\`

// Normalize converts a path to slash-separated, archive-relative form.
//
//   - Backslashes become forward slashes: `a\b` → "a/b"
//   - Leading and trailing slashes are stripped: "/etc/nginx/" → "etc/nginx"
//   - Consecutive slashes collapse: "etc//nginx" → "etc/nginx"
//   - Empty input becomes ".": "" → "."
//
// Path elements are not resolved; "." and ".." segments are preserved for
// Valid to reject.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.Trim(p, "/")
	if p == "" {
		return "."
	}

	parts := strings.Split(p, "/")
	result := parts[:0] // reuse backing array
	for _, part := range parts {
		if part != "" && part != "." {
			result = append(result, part)
		}
	}
	if len(result) == 0 {
		return "."
	}
	return strings.Join(result, "/")
}

// Valid reports whether a normalized entry name is safe to materialize under
// a destination root: non-empty, relative, and free of ".." segments.
func Valid(name string) bool {
	if name == "" || name == "." {
		return false
	}
	if strings.HasPrefix(name, "/") || hasDrivePrefix(name) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

// UnescapeGlob removes backslash escapes added for glob-aware operations,
// recovering the literal path. Inverse of EscapeGlob.
func UnescapeGlob(p string) string {
	if !strings.ContainsRune(p, '\\') {
		return p
	}
	var b strings.Builder
	b.Grow(len(p))
	for i := 0; i < len(p); i++ {
		if p[i] == '\\' && i+1 < len(p) && strings.IndexByte(globMeta, p[i+1]) >= 0 {
			continue
		}
		b.WriteByte(p[i])
	}
	return b.String()
}

// hasDrivePrefix reports whether name starts with a Windows drive letter
// ("C:"), which would escape the destination root on that platform.
func hasDrivePrefix(name string) bool {
	if len(name) < 2 || name[1] != ':' {
		return false
	}
	c := name[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// HasGlobMeta reports whether p contains pattern-matching metacharacters.
func HasGlobMeta(p string) bool {
	return strings.ContainsAny(p, globMeta)
}

// EscapeGlob escapes pattern-matching metacharacters in p so that
// glob-aware operations treat it as a literal path. The escaping exists
// only for the matching step; the bytes of the underlying name are
// unchanged.
func EscapeGlob(p string) string {
	if !HasGlobMeta(p) {
		return p
	}
	var b strings.Builder
	b.Grow(len(p) + 4)
	for i := 0; i < len(p); i++ {
		if strings.IndexByte(globMeta, p[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(p[i])
	}
	return b.String()
}
