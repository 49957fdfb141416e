package pathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", "."},
		{"root", "/", "."},
		{"simple", "etc/nginx", "etc/nginx"},
		{"leading slash", "/etc/nginx", "etc/nginx"},
		{"trailing slash", "etc/nginx/", "etc/nginx"},
		{"both slashes", "/etc/nginx/", "etc/nginx"},
		{"consecutive slashes", "etc//nginx", "etc/nginx"},
		{"backslashes", `dir\sub\file.txt`, "dir/sub/file.txt"},
		{"dot segments dropped", "./a/./b", "a/b"},
		{"dotdot preserved", "a/../b", "a/../b"},
		{"only slashes", "///", "."},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"simple", "a/b.txt", true},
		{"metacharacters ok", "a[1]/b*.txt", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"absolute", "/etc/passwd", false},
		{"parent traversal", "../outside", false},
		{"embedded traversal", "a/../../outside", false},
		{"drive letter", `C:/windows`, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Valid(tt.path))
		})
	}
}

func TestEscapeGlob(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "a/b.txt", "a/b.txt"},
		{"bracket", "a[1].txt", `a\[1].txt`},
		{"star", "a*.txt", `a\*.txt`},
		{"question", "a?.txt", `a\?.txt`},
		{"backslash", `a\b`, `a\\b`},
		{"mixed", "x[a]*?", `x\[a]\*\?`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, EscapeGlob(tt.input))
		})
	}
}

func TestUnescapeGlobInverse(t *testing.T) {
	t.Parallel()

	for _, p := range []string{"plain", "a[1].txt", "a*?.txt", `a\b`, "x[a]*?"} {
		assert.Equal(t, p, UnescapeGlob(EscapeGlob(p)), p)
	}
}

func TestHasGlobMeta(t *testing.T) {
	t.Parallel()

	assert.False(t, HasGlobMeta("plain/path.txt"))
	assert.True(t, HasGlobMeta("src/*.go"))
	assert.True(t, HasGlobMeta("a[0-9].bin"))
	assert.True(t, HasGlobMeta("maybe?.txt"))
}
