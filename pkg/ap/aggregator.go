package ap

import (
	"sync"

	"github.com/distributed-affinity/pkg/crdt"
)

// ExemplarAggregator accumulates elected exemplar indices as a grow-only
// set. Contributions made during a superstep become readable after the
// barrier, like every aggregator, and union makes the result independent of
// the order columns report in.
type ExemplarAggregator struct {
	mu       sync.Mutex
	current  *crdt.ExemplarSet
	readable *crdt.ExemplarSet
}

func NewExemplarAggregator() *ExemplarAggregator {
	return &ExemplarAggregator{
		current:  crdt.NewExemplarSet(),
		readable: crdt.NewExemplarSet(),
	}
}

func (a *ExemplarAggregator) Aggregate(value any) {
	index := value.(int64)
	a.mu.Lock()
	defer a.mu.Unlock()
	a.current.Add(index)
}

// Get returns the set frozen at the last barrier. Callers must treat it as
// read-only.
func (a *ExemplarAggregator) Get() any {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.readable
}

func (a *ExemplarAggregator) Flush() {
	a.mu.Lock()
	defer a.mu.Unlock()
	merged := a.readable.Clone()
	merged.Merge(a.current)
	a.readable = merged
}
