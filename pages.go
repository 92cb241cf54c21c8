package finalize

import (
	"fmt"
	"slices"
)

// Pages is the ordered collection of final output locations produced
// by a successful run. Paths are sorted ascending by name and stable
// across runs over identical interim content, regardless of the order
// in which write workers finished.
type Pages struct {
	paths []string
}

func newPages(paths []string) *Pages {
	return &Pages{paths: paths}
}

// Len returns the number of output files written.
func (p *Pages) Len() int { return len(p.paths) }

// Path returns the i-th output location in sorted order.
func (p *Pages) Path(i int) (string, error) {
	if i < 0 || i >= len(p.paths) {
		return "", fmt.Errorf("finalize: page %d out of range [0, %d)", i, len(p.paths))
	}
	return p.paths[i], nil
}

// Paths returns a copy of all output locations in sorted order.
func (p *Pages) Paths() []string {
	return slices.Clone(p.paths)
}
