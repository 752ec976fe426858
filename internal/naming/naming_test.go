package naming

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"placeholder", "_", ""},
		{"double underscore kept", "__", "__"},
		{"clean", "Counter-Strike 2", "Counter-Strike 2"},
		{"every illegal char", "a`b/c<d>e:f\"g\\h|i?j*k", "abcdefghijk"},
		{"only illegal", `<>:"/\|?*` + "`", ""},
		{"unicode kept", "Café: Déjà Vu?", "Café Déjà Vu"},
		{"placeholder after filtering", "?_", ""},
		{"backtick placeholder", "`_", ""},
		{"invalid utf-8 dropped", "a\xffb", "ab"},
		{"truncated rune dropped", "Déjà\xc3", "Déjà"},
		{"twitch fragment", "VOD_exampleuser_Just Chatting_Hello World", "VOD_exampleuser_Just Chatting_Hello World"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Properties(t *testing.T) {
	inputs := []string{
		"", "_", "plain", "What? Now: <yes>", "C:\\Games\\Half-Life 2",
		"***", "a_b", "`tick`", "Ünïcödé | pipes", strings.Repeat("?x", 50),
		"?_", "`_", "_:", "a\xffb", "\xff\xfe", "_\xff", "Déjà\xc3",
	}
	for _, in := range inputs {
		out := Sanitize(in)
		assert.False(t, strings.ContainsAny(out, Disallowed), "input %q", in)
		assert.LessOrEqual(t, len(out), len(in), "input %q", in)
		assert.Equal(t, out, Sanitize(out), "not idempotent for %q", in)
	}
}

func TestRenamedPath(t *testing.T) {
	dir := filepath.Join("rec", "2024")
	tests := []struct {
		name     string
		path     string
		fragment string
		want     string
	}{
		{"steam", filepath.Join(dir, "clip.mp4"), "Counter-Strike 2", filepath.Join(dir, "clip_Counter-Strike 2.mp4")},
		{"empty fragment", filepath.Join(dir, "clip.mp4"), "", filepath.Join(dir, "clip.mp4")},
		{"dotted stem", filepath.Join(dir, "2024-01-01 10.00.00.mp4"), "Game", filepath.Join(dir, "2024-01-01 10.00.00_Game.mp4")},
		{"no extension", filepath.Join(dir, "clip"), "Game", filepath.Join(dir, "clip_Game")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenamedPath(tt.path, tt.fragment))
		})
	}
}

func TestReplaceExt(t *testing.T) {
	assert.Equal(t, filepath.Join("r", "clip.mp4"), ReplaceExt(filepath.Join("r", "clip.mkv"), "mp4"))
	assert.Equal(t, filepath.Join("r", "clip.v2.mp4"), ReplaceExt(filepath.Join("r", "clip.v2.mkv"), "mp4"))
	assert.Equal(t, filepath.Join("r", "clip.mp4"), ReplaceExt(filepath.Join("r", "clip"), "mp4"))
}

func TestCollisionResolver_FreeDestination(t *testing.T) {
	cr := NewCollisionResolverFunc(func(string) bool { return false })
	assert.Equal(t, "/r/a_G.mp4", cr.Claim("/r/a.mp4", "/r/a_G.mp4"))
}

func TestCollisionResolver_ExistingOnDisk(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "clip_Game.mp4")
	require.NoError(t, os.WriteFile(dest, nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip_Game - dup1.mp4"), nil, 0o644))

	cr := NewCollisionResolver()
	got := cr.Claim(filepath.Join(dir, "clip.mp4"), dest)
	assert.Equal(t, filepath.Join(dir, "clip_Game - dup2.mp4"), got)
}

func TestCollisionResolver_ConcurrentClaims(t *testing.T) {
	cr := NewCollisionResolverFunc(func(string) bool { return false })

	var wg sync.WaitGroup
	got := make([]string, 8)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got[i] = cr.Claim(filepath.Join("r", "src", string(rune('a'+i))), filepath.Join("r", "same.mp4"))
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, p := range got {
		assert.False(t, seen[p], "duplicate claim %s", p)
		seen[p] = true
	}
}

func TestCollisionResolver_ReleaseAndReclaim(t *testing.T) {
	cr := NewCollisionResolverFunc(func(string) bool { return false })
	first := cr.Claim("a", "dest.mp4")
	assert.Equal(t, "dest.mp4", first)
	assert.Equal(t, "dest - dup1.mp4", cr.Claim("b", "dest.mp4"))

	cr.Release(first)
	assert.Equal(t, "dest.mp4", cr.Claim("c", "dest.mp4"))
}

func TestCollisionResolver_SameSource(t *testing.T) {
	cr := NewCollisionResolverFunc(func(string) bool { return true })
	assert.Equal(t, "x.mp4", cr.Claim("x.mp4", "x.mp4"))
}
