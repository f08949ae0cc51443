package core

import (
	"fmt"
	"sync/atomic"
)

// NameGenerator produces placeholder filenames for uploads whose client
// supplied none. Names must be unique for the life of the process.
type NameGenerator interface {
	Next() string
}

// CounterNames yields uploaded-file-1.file, uploaded-file-2.file, ...
type CounterNames struct {
	n atomic.Uint64
}

// NewCounterNames creates a generator starting at 1.
func NewCounterNames() *CounterNames {
	return &CounterNames{}
}

// Next returns the next placeholder name.
func (c *CounterNames) Next() string {
	return fmt.Sprintf("uploaded-file-%d.file", c.n.Add(1))
}
