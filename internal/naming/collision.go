package naming

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// CollisionResolver hands out destination paths to concurrent rename tasks.
// A path is taken when it exists on disk or another task has claimed it and
// not yet released it; taken paths get a " - dupN" suffix before the
// extension. All methods are goroutine-safe.
type CollisionResolver struct {
	mu     sync.Mutex
	owners map[string]string // claimed destination → source path that owns it
	exists func(string) bool
}

// NewCollisionResolver creates a resolver that checks the real filesystem.
func NewCollisionResolver() *CollisionResolver {
	return NewCollisionResolverFunc(fileExists)
}

// NewCollisionResolverFunc creates a resolver with a custom existence check.
func NewCollisionResolverFunc(exists func(string) bool) *CollisionResolver {
	return &CollisionResolver{
		owners: make(map[string]string),
		exists: exists,
	}
}

// Claim returns the destination source should be renamed to. requested is
// returned as-is when it is free (or is source itself); otherwise the first
// free " - dupN" variant is claimed and returned. Call Release once the
// rename has finished or failed.
func (cr *CollisionResolver) Claim(source, requested string) string {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if requested == source || cr.free(source, requested) {
		cr.owners[requested] = source
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s - dup%d%s", stem, n, ext))
		if cr.free(source, candidate) {
			cr.owners[candidate] = source
			return candidate
		}
	}
}

// Release drops the claim on dest.
func (cr *CollisionResolver) Release(dest string) {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	delete(cr.owners, dest)
}

func (cr *CollisionResolver) free(source, candidate string) bool {
	if owner, claimed := cr.owners[candidate]; claimed && owner != source {
		return false
	}
	return !cr.exists(candidate)
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
