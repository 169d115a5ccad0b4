package assets

import "slices"

// Collector is the append-only, ordered list of script files to bundle. The
// same path may appear more than once; every occurrence is concatenated.
type Collector struct {
	paths []string
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Append records a script path at the end of the sequence.
func (c *Collector) Append(path string) {
	c.paths = append(c.paths, path)
}

// Len returns the number of recorded entries.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	return len(c.paths)
}

// Paths returns a copy of the entries in declaration order.
func (c *Collector) Paths() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.paths)
}
