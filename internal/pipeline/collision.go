package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Resolver hands out collision-free target paths within one batch run. A
// candidate is rejected when a file already exists at it (unless that file
// is the source itself) or when another source in this run has already
// claimed it; numeric suffixes _1, _2, ... disambiguate. All methods are
// goroutine-safe.
type Resolver struct {
	mu     sync.Mutex
	claims map[string]string // target path → source path that claimed it
}

// NewResolver creates a ready-to-use resolver.
func NewResolver() *Resolver {
	return &Resolver{claims: make(map[string]string)}
}

// Resolve returns the final target path in dir for base+ext on behalf of
// source. When the undecorated target is the source itself it is returned
// as-is (the caller treats that as a no-op rename).
func (r *Resolver) Resolve(source, dir, base, ext string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for n := 0; ; n++ {
		name := base
		if n > 0 {
			name = fmt.Sprintf("%s_%d", base, n)
		}
		candidate := filepath.Join(dir, name+ext)

		if owner, claimed := r.claims[candidate]; claimed && owner != source {
			continue
		}
		if candidate != source && pathExists(candidate) {
			continue
		}
		r.claims[candidate] = source
		return candidate
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
