package naming

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Resolver tracks output paths claimed during a run and resolves base-name
// collisions. Two inputs that differ only by extension (photo.jpg and
// photo.png) would otherwise map to the same photo.webp and silently
// overwrite each other; the later claim gets a "-2", "-3", … suffix instead.
// Claims are per run, so re-running over the same input set still overwrites
// the previous run's outputs.
type Resolver struct {
	owners map[string]string // output path -> input path that owns it
}

// NewResolver creates a ready-to-use resolver.
func NewResolver() *Resolver {
	return &Resolver{owners: make(map[string]string)}
}

// Resolve returns the final output path for input. If requested is unclaimed
// (or already owned by input), it is returned as-is; otherwise the first free
// suffixed variant is claimed and returned.
func (r *Resolver) Resolve(input, requested string) string {
	owner, exists := r.owners[requested]
	if !exists || owner == input {
		r.owners[requested] = input
		return requested
	}

	dir := filepath.Dir(requested)
	base := filepath.Base(requested)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for n := 2; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, ext))
		cOwner, taken := r.owners[candidate]
		if !taken || cOwner == input {
			r.owners[candidate] = input
			return candidate
		}
	}
}
