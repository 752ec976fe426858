package naming

import (
	"path/filepath"
	"strings"
)

// RenamedPath returns path with "_"+fragment inserted between the base name
// and the extension:
//
//	/rec/clip.mp4 + "Counter-Strike 2" -> /rec/clip_Counter-Strike 2.mp4
//
// An empty fragment returns path unchanged.
func RenamedPath(path, fragment string) string {
	if fragment == "" {
		return path
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_"+fragment+ext)
}

// ReplaceExt returns path with its extension swapped for ext (given without
// the leading dot).
func ReplaceExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + ext
}
